package entities

import (
	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/systems"
)

// Structure - неподвижное строение с HP и плитами брони (аванпост).
// Разрушение публикует Stage.OutpostFall или Stage.BaseFall по роли.
type Structure struct {
	engine.Store

	pos   domain.Vec2
	armor *Lights

	hp    *engine.Replicated[int]
	maxHP *engine.Replicated[int]
	alive *engine.Replicated[bool]
}

func NewStructure(id types.Identity, hp, plates int, pos domain.Vec2) *Structure {
	s := &Structure{
		Store: engine.NewStore(id),
		pos:   pos,
	}
	s.hp = engine.NewReplicated(&s.Store, "hp", hp)
	s.maxHP = engine.NewReplicated(&s.Store, "maxHp", hp)
	s.alive = engine.NewReplicated(&s.Store, "alive", true)
	engine.NewReplicated(&s.Store, "x", pos.X)
	engine.NewReplicated(&s.Store, "y", pos.Y)
	s.armor = NewLights(&s.Store, "armor", plates, domain.LightOn)
	return s
}

func (s *Structure) Position() domain.Vec2 { return s.pos }
func (s *Structure) Alive() bool           { return s.alive.Get() }
func (s *Structure) Health() int           { return s.hp.Get() }
func (s *Structure) MaxHealth() int        { return s.maxHP.Get() }
func (s *Structure) Armor() *Lights        { return s.armor }

func (s *Structure) Init(ctx *engine.Sim) error {
	if s.armor.Len() == 0 {
		return engine.ErrMissingChild
	}
	return s.Store.Init(ctx)
}

func (s *Structure) InputActions() []domain.ActionName {
	return engine.UnionActions(s.Store.InputActions(),
		domain.NameCombatHit,
		domain.NameCombatKill,
		domain.NameLightSet,
	)
}

func (s *Structure) Receive(ctx *engine.Sim, a domain.Action) {
	if !ctx.IsAuthority() {
		return
	}

	switch act := a.(type) {
	case domain.ChildAction:
		if act.Parent != s.Identity() {
			return
		}
		switch inner := act.Inner.(type) {
		case domain.CombatHit:
			s.hit(ctx, inner, act.Child)
		case domain.LightSet:
			s.armor.Apply(ctx, act.Child, inner.Color)
		}
	case domain.CombatKill:
		if act.Victim == s.Identity() && s.Alive() {
			s.destroy(ctx, act.Killer, false)
		}
	default:
		s.Store.Receive(ctx, a)
	}
}

func (s *Structure) hit(ctx *engine.Sim, hit domain.CombatHit, plate int) {
	if plate < 0 || !s.armor.Has(plate) {
		s.log(ctx).WithError(engine.ErrMissingChild).WithField("plate", plate).Warn("Hit on unknown armor plate")
		return
	}
	if !s.Alive() {
		return
	}

	report := systems.ApplyDamage(hit.Shooter, s.Identity(), hit.Damage, &s.Store)
	if report.Blocked {
		return
	}
	hp := max(0, s.Health()-report.Final)
	s.hp.Set(ctx, hp)
	s.CallObservers(ctx, "FlashPlate", plate)

	if hp == 0 {
		s.destroy(ctx, hit.Shooter, true)
	}
}

func (s *Structure) destroy(ctx *engine.Sim, killer types.Identity, announce bool) {
	s.hp.Set(ctx, 0)
	s.alive.Set(ctx, false)
	ctx.SendChild(domain.LightSet{Color: domain.LightOff}, s.Identity(), domain.AllChildren)
	s.log(ctx).WithField("killer", killer.String()).Info("Structure destroyed")

	if announce {
		ctx.Send(domain.CombatKill{Victim: s.Identity(), Killer: killer})
	}

	switch s.Identity().Role {
	case enums.RoleOutpost:
		ctx.Send(domain.StageOutpostFall{Camp: s.Identity().Camp})
	case enums.RoleBase:
		ctx.Send(domain.StageBaseFall{Camp: s.Identity().Camp})
	}
}

func (s *Structure) log(ctx *engine.Sim) *logrus.Entry {
	return ctx.Log().WithFields(logrus.Fields{
		"component": "structure",
		"structure": s.Identity().String(),
	})
}

// --- BASE ---

// Base - база стороны: получает BaseDefense до падения своего аванпоста.
type Base struct {
	*Structure
}

func NewBase(id types.Identity, hp, plates int, pos domain.Vec2) *Base {
	return &Base{Structure: NewStructure(id, hp, plates, pos)}
}

func (b *Base) InputActions() []domain.ActionName {
	return engine.UnionActions(b.Structure.InputActions(), domain.NameStageOutpostFall)
}

func (b *Base) Init(ctx *engine.Sim) error {
	if err := b.Structure.Init(ctx); err != nil {
		return err
	}
	b.Mutate(ctx, func() {
		b.AddEffect(ctx, domain.Effect{Kind: domain.EffectBaseDefense, Source: b.Identity()})
	})
	return nil
}

func (b *Base) Receive(ctx *engine.Sim, a domain.Action) {
	if fall, ok := a.(domain.StageOutpostFall); ok {
		if fall.Camp == b.Identity().Camp && ctx.IsAuthority() {
			b.RemoveEffect(ctx, domain.EffectBaseDefense)
		}
		return
	}
	b.Structure.Receive(ctx, a)
}
