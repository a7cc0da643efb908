package entities

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// Состояния руны
const (
	RuneUnavailable = "unavailable"
	RuneAvailable   = "available"
	RuneActivating  = "activating"
	RuneActivated   = "activated"
)

// События автомата руны
const (
	runeEnable   = "enable"
	runeStart    = "start"
	runeComplete = "complete"
	runeExpire   = "expire"
)

// BranchState - состояние одной ветви (лопасти) руны.
type BranchState uint8

const (
	BranchIdle BranchState = iota
	BranchCanHit
	BranchLit
)

func (b BranchState) String() string {
	switch b {
	case BranchCanHit:
		return "CAN_HIT"
	case BranchLit:
		return "LIT"
	default:
		return "IDLE"
	}
}

// PowerRune - руна энергии.
//
// Unavailable -> Available (Rune.Enable от судьи) -> Activating (Rune.Start) ->
// Activated (все ветви зажжены) -> Unavailable по истечении RuneActivatedDuration.
// В Activating всегда ровно одна ветвь в CanHit. Неверное попадание или тайм-аут
// сбрасывают все ветви и сразу взводят новую.
type PowerRune struct {
	engine.Store

	machine  *fsm.FSM
	sensor   *engine.Sensor // Зона запуска. nil - запуск откуда угодно
	util     *engine.SensorUtility
	branches []BranchState
	lights   *Lights
	canHit   int

	sinceHit  time.Duration
	remaining time.Duration

	state *engine.Replicated[string]
	camp  *engine.Replicated[enums.Camp]
	lit   *engine.Replicated[int]
}

func NewPowerRune(id types.Identity, branches int, sensor *engine.Sensor) *PowerRune {
	p := &PowerRune{
		Store:    engine.NewStore(id),
		sensor:   sensor,
		branches: make([]BranchState, max(0, branches)),
		canHit:   -1,
	}
	p.state = engine.NewReplicated(&p.Store, "state", RuneUnavailable)
	p.camp = engine.NewReplicated(&p.Store, "camp", enums.CampNeutral)
	p.lit = engine.NewReplicated(&p.Store, "lit", 0)
	p.lights = NewLights(&p.Store, "branch", len(p.branches), domain.LightOff)

	p.machine = fsm.NewFSM(
		RuneUnavailable,
		fsm.Events{
			{Name: runeEnable, Src: []string{RuneUnavailable}, Dst: RuneAvailable},
			{Name: runeStart, Src: []string{RuneAvailable}, Dst: RuneActivating},
			{Name: runeComplete, Src: []string{RuneActivating}, Dst: RuneActivated},
			{Name: runeExpire, Src: []string{RuneActivated}, Dst: RuneUnavailable},
		},
		fsm.Callbacks{},
	)
	return p
}

// --- ДОСТУП ---

func (p *PowerRune) Phase() string    { return p.machine.Current() }
func (p *PowerRune) Camp() enums.Camp { return p.camp.Get() }
func (p *PowerRune) LitCount() int    { return p.lit.Get() }
func (p *PowerRune) Lights() *Lights  { return p.lights }

// CanHit - индекс взведённой ветви, -1 вне активации.
func (p *PowerRune) CanHit() int { return p.canHit }

func (p *PowerRune) Branch(i int) BranchState {
	if i < 0 || i >= len(p.branches) {
		return BranchIdle
	}
	return p.branches[i]
}

// --- ЖИЗНЕННЫЙ ЦИКЛ ---

func (p *PowerRune) Init(*engine.Sim) error {
	if len(p.branches) == 0 {
		return engine.ErrMissingChild
	}
	if p.sensor != nil {
		util, err := engine.NewSensorUtility(p.sensor, nil, nil)
		if err != nil {
			return err
		}
		p.util = util
	}
	return nil
}

func (p *PowerRune) InputActions() []domain.ActionName {
	return engine.UnionActions(p.Store.InputActions(),
		domain.NameRuneEnable,
		domain.NameRuneStart,
		domain.NameRuneHit,
		domain.NameLightSet,
	)
}

func (p *PowerRune) Receive(ctx *engine.Sim, a domain.Action) {
	if !ctx.IsAuthority() {
		return
	}
	self := p.Identity()

	switch act := a.(type) {
	case domain.RuneEnable:
		if act.Rune == self && p.event(ctx, runeEnable) {
			p.log(ctx).Info("Rune available")
		}

	case domain.RuneStart:
		if act.Rune != self || !act.Camp.IsPlayable() {
			return
		}
		if !p.inZone(act.Camp) {
			p.log(ctx).WithField("camp", act.Camp.String()).Debug("Rune start refused: no robot in the launch zone")
			return
		}
		if p.event(ctx, runeStart) {
			p.camp.Set(ctx, act.Camp)
			p.reset(ctx)
		}

	case domain.RuneHit:
		if act.Rune == self && p.Phase() == RuneActivating && act.Camp == p.Camp() {
			p.hit(ctx, act.Branch)
		}

	case domain.ChildAction:
		if light, ok := act.Inner.(domain.LightSet); ok && act.Parent == self {
			p.lights.Apply(ctx, act.Child, light.Color)
		}

	default:
		p.Store.Receive(ctx, a)
	}
}

func (p *PowerRune) Tick(ctx *engine.Sim, dt time.Duration) {
	if p.util != nil {
		p.util.Poll(ctx)
	}
	if !ctx.IsAuthority() {
		return
	}

	switch p.Phase() {
	case RuneActivating:
		p.sinceHit += dt
		if p.sinceHit >= ctx.Rules.RuneHitTimeout {
			p.log(ctx).Debug("Rune hit timeout: progress discarded")
			p.reset(ctx)
		}

	case RuneActivated:
		p.remaining -= dt
		if p.remaining <= 0 && p.event(ctx, runeExpire) {
			p.camp.Set(ctx, enums.CampNeutral)
			p.clear(ctx)
		}
	}
}

// --- ВЕТВИ ---

func (p *PowerRune) hit(ctx *engine.Sim, branch int) {
	// 1. Неверная ветвь: весь прогресс теряется
	if branch != p.canHit {
		p.log(ctx).WithField("branch", branch).Debug("Wrong branch: progress discarded")
		p.reset(ctx)
		return
	}

	// 2. Верная ветвь загорается
	p.branches[branch] = BranchLit
	ctx.SendChild(domain.LightSet{Color: domain.LightOn}, p.Identity(), branch)
	p.lit.Set(ctx, p.LitCount()+1)
	p.sinceHit = 0
	p.canHit = -1

	if p.LitCount() < len(p.branches) {
		p.arm(ctx)
		return
	}

	// 3. Все ветви: активация
	if !p.event(ctx, runeComplete) {
		return
	}
	camp := p.Camp()
	duration := ctx.Rules.RuneActivatedDuration
	p.remaining = duration

	ctx.Send(domain.RuneActivated{Rune: p.Identity(), Camp: camp})
	for _, kind := range []domain.EffectKind{domain.EffectRuneAttack, domain.EffectRuneDefense} {
		grantCamp(ctx, camp, domain.Effect{Kind: kind, Source: p.Identity(), Duration: duration})
	}
	p.log(ctx).WithField("camp", camp.String()).Info("Rune activated")
}

// reset гасит все ветви и взводит новую.
func (p *PowerRune) reset(ctx *engine.Sim) {
	p.clear(ctx)
	p.arm(ctx)
}

func (p *PowerRune) clear(ctx *engine.Sim) {
	for i := range p.branches {
		p.branches[i] = BranchIdle
	}
	ctx.SendChild(domain.LightSet{Color: domain.LightOff}, p.Identity(), domain.AllChildren)
	p.lit.Set(ctx, 0)
	p.canHit = -1
	p.sinceHit = 0
}

// arm взводит случайную незажжённую ветвь.
func (p *PowerRune) arm(ctx *engine.Sim) {
	var idle []int
	for i, b := range p.branches {
		if b == BranchIdle {
			idle = append(idle, i)
		}
	}
	if len(idle) == 0 {
		return
	}
	pick := idle[ctx.Rng.Intn(len(idle))]
	p.branches[pick] = BranchCanHit
	p.canHit = pick
	ctx.SendChild(domain.LightSet{Color: domain.LightBlink}, p.Identity(), pick)
}

// inZone - есть ли в зоне запуска робот стороны camp.
func (p *PowerRune) inZone(camp enums.Camp) bool {
	if p.util == nil {
		return true
	}
	for _, id := range p.util.Tracked() {
		if id.Camp == camp {
			return true
		}
	}
	return false
}

// event переводит автомат и синхронизирует реплицируемое состояние.
func (p *PowerRune) event(ctx *engine.Sim, name string) bool {
	if err := p.machine.Event(context.Background(), name); err != nil {
		p.log(ctx).WithError(err).WithField("event", name).Debug("Rune transition rejected")
		return false
	}
	p.state.Set(ctx, p.machine.Current())
	return true
}

func (p *PowerRune) log(ctx *engine.Sim) *logrus.Entry {
	return ctx.Log().WithFields(logrus.Fields{
		"component": "power_rune",
		"rune":      p.Identity().String(),
		"state":     p.Phase(),
	})
}
