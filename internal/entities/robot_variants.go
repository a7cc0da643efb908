package entities

import (
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/systems"
)

// --- SENTINEL ---

// Sentinel - автономный робот у базы. Неуязвим, пока стоит аванпост его стороны,
// и сам стреляет по ближайшей видимой цели.
type Sentinel struct {
	*Robot
	cooldown time.Duration
}

func NewSentinel(r *Robot) *Sentinel {
	return &Sentinel{Robot: r}
}

func (s *Sentinel) InputActions() []domain.ActionName {
	return engine.UnionActions(s.Robot.InputActions(), domain.NameStageOutpostFall)
}

func (s *Sentinel) Init(ctx *engine.Sim) error {
	if err := s.Robot.Init(ctx); err != nil {
		return err
	}
	s.Mutate(ctx, func() {
		s.AddEffect(ctx, domain.Effect{Kind: domain.EffectSentinelInvulnerable, Source: s.Identity()})
	})
	return nil
}

func (s *Sentinel) Receive(ctx *engine.Sim, a domain.Action) {
	switch act := a.(type) {
	case domain.StageOutpostFall:
		if act.Camp == s.Identity().Camp && ctx.IsAuthority() {
			s.RemoveEffect(ctx, domain.EffectSentinelInvulnerable)
			s.log(ctx).Info("Outpost fell: sentinel is vulnerable")
		}
	default:
		s.Robot.Receive(ctx, a)
	}
}

func (s *Sentinel) Tick(ctx *engine.Sim, dt time.Duration) {
	s.Robot.Tick(ctx, dt)
	if !ctx.IsAuthority() || !s.Alive() || s.Ammo() <= 0 {
		return
	}

	s.cooldown -= dt
	if s.cooldown > 0 {
		return
	}

	targets := systems.SelectTargets(ctx, systems.TargetQuery{
		From:      s.Identity(),
		Pos:       s.Position(),
		Range:     s.spec.Range,
		Obstacles: s.terrain.Obstacles,
	})
	if len(targets) == 0 {
		return
	}
	s.cooldown = domain.SentinelFireInterval
	ctx.Send(domain.CombatFire{Shooter: s.Identity(), Target: targets[0].Identity(), Plate: 0})
}

// --- ENGINEER ---

// Engineer не несёт пусковой установки: приказы стрелять игнорируются.
type Engineer struct {
	*Robot
}

func (e *Engineer) Receive(ctx *engine.Sim, a domain.Action) {
	if fire, ok := a.(domain.CombatFire); ok && fire.Shooter == e.Identity() {
		e.log(ctx).Debug("Fire ignored: engineer has no launcher")
		return
	}
	e.Robot.Receive(ctx, a)
}
