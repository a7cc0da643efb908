package entities

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/systems"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
)

// Terrain - поле и препятствия, по которым ездят роботы.
type Terrain struct {
	Field     domain.Shape
	Obstacles []domain.Shape
}

// OpenTerrain - поле без границ и препятствий (тесты, отладочные матчи).
func OpenTerrain() Terrain {
	return Terrain{Field: domain.Rect(domain.Vec2{}, math.MaxFloat32, math.MaxFloat32)}
}

// Robot - управляемый оператором робот. Герой и пехота - это Robot с разными шаблонами.
type Robot struct {
	engine.Store

	spec    arena.RobotTemplate
	terrain Terrain
	armor   *Lights

	hp    *engine.Replicated[int]
	maxHP *engine.Replicated[int]
	ammo  *engine.Replicated[int]
	x     *engine.Replicated[float64]
	y     *engine.Replicated[float64]
	alive *engine.Replicated[bool]

	target domain.Vec2
	moving bool
	regen  float64 // Накопленная дробная часть регенерации
}

func NewRobot(id types.Identity, spec arena.RobotTemplate, pos domain.Vec2, terrain Terrain) *Robot {
	r := &Robot{
		Store:   engine.NewStore(id),
		spec:    spec,
		terrain: terrain,
	}
	r.hp = engine.NewReplicated(&r.Store, "hp", spec.MaxHP)
	r.maxHP = engine.NewReplicated(&r.Store, "maxHp", spec.MaxHP)
	r.ammo = engine.NewReplicated(&r.Store, "ammo", spec.Ammo)
	r.x = engine.NewReplicated(&r.Store, "x", pos.X)
	r.y = engine.NewReplicated(&r.Store, "y", pos.Y)
	r.alive = engine.NewReplicated(&r.Store, "alive", true)
	r.armor = NewLights(&r.Store, "armor", domain.ArmorPlates, domain.LightOn)
	return r
}

// NewRobotFor создаёт робота нужного варианта по роли шаблона.
func NewRobotFor(id types.Identity, spec arena.RobotTemplate, pos domain.Vec2, terrain Terrain) systems.Target {
	r := NewRobot(id, spec, pos, terrain)
	switch spec.Role {
	case arena.Sentinel.Role:
		return NewSentinel(r)
	case arena.Engineer.Role:
		return &Engineer{Robot: r}
	default:
		return r
	}
}

// --- ДОСТУП ---

func (r *Robot) HP() int                       { return r.hp.Get() }
func (r *Robot) MaxHP() int                    { return r.maxHP.Get() }
func (r *Robot) Ammo() int                     { return r.ammo.Get() }
func (r *Robot) Alive() bool                   { return r.alive.Get() }
func (r *Robot) Position() domain.Vec2         { return domain.Vec2{X: r.x.Get(), Y: r.y.Get()} }
func (r *Robot) Template() arena.RobotTemplate { return r.spec }
func (r *Robot) Armor() *Lights                { return r.armor }

// --- ЖИЗНЕННЫЙ ЦИКЛ ---

func (r *Robot) Init(ctx *engine.Sim) error {
	if r.armor.Len() == 0 {
		return engine.ErrMissingChild
	}
	return r.Store.Init(ctx)
}

func (r *Robot) InputActions() []domain.ActionName {
	return engine.UnionActions(r.Store.InputActions(),
		domain.NameCombatFire,
		domain.NameCombatHit,
		domain.NameCombatKill,
		domain.NameSupplyDoSupply,
		domain.NameRobotRevive,
		domain.NameRobotMove,
		domain.NameLightSet,
	)
}

func (r *Robot) Receive(ctx *engine.Sim, a domain.Action) {
	if !ctx.IsAuthority() {
		return
	}
	self := r.Identity()

	switch act := a.(type) {
	case domain.CombatFire:
		if act.Shooter == self {
			r.fire(ctx, act)
		}
	case domain.ChildAction:
		if act.Parent != self {
			return
		}
		switch inner := act.Inner.(type) {
		case domain.CombatHit:
			r.hit(ctx, inner, act.Child)
		case domain.LightSet:
			r.armor.Apply(ctx, act.Child, inner.Color)
		}
	case domain.CombatKill:
		// Убийство без попадания (админ): повторно Kill не публикуем
		if act.Victim == self && r.Alive() {
			r.die(ctx, act.Killer, false)
		}
	case domain.SupplyDoSupply:
		if act.Receiver == self && act.Amount > 0 {
			r.ammo.Set(ctx, r.ammo.Get()+act.Amount)
		}
	case domain.RobotRevive:
		if act.Receiver == self && !r.Alive() {
			r.revive(ctx)
		}
	case domain.RobotMove:
		if act.Receiver == self && r.Alive() {
			r.target = domain.Vec2{X: act.X, Y: act.Y}
			r.moving = true
		}
	default:
		r.Store.Receive(ctx, a)
	}
}

func (r *Robot) Tick(ctx *engine.Sim, dt time.Duration) {
	if !ctx.IsAuthority() || !r.Alive() {
		return
	}

	// 1. Движение к цели
	if r.moving {
		res := systems.CalculateMove(r.Position(), r.target, r.spec.Speed, dt.Seconds(), r.terrain.Field, r.terrain.Obstacles)
		if res.HasMoved {
			r.x.Set(ctx, res.Pos.X)
			r.y.Set(ctx, res.Pos.Y)
		}
		if res.Arrived || !res.HasMoved {
			r.moving = false
		}
	}

	// 2. Регенерация на острове ресурсов
	if e, ok := r.Effect(domain.EffectResourceIsland); ok && r.HP() < r.MaxHP() {
		ratio := e.Value
		if ratio <= 0 {
			ratio = domain.ResourceIslandRegenRatio
		}
		r.regen += ratio * float64(r.MaxHP()) * dt.Seconds()
		if whole := int(r.regen); whole > 0 {
			r.regen -= float64(whole)
			r.hp.Set(ctx, min(r.MaxHP(), r.HP()+whole))
		}
	}
}

// --- БОЙ ---

func (r *Robot) log(ctx *engine.Sim) *logrus.Entry {
	return ctx.Log().WithFields(logrus.Fields{
		"component": "robot",
		"robot":     r.Identity().String(),
	})
}

// fire - сторона стрелка: расход снаряда и публикация попадания в плиту цели.
func (r *Robot) fire(ctx *engine.Sim, act domain.CombatFire) {
	if !r.Alive() {
		return
	}
	if r.Ammo() <= 0 {
		r.log(ctx).Debug("Fire ignored: out of ammo")
		return
	}
	if act.Target.Camp == r.Identity().Camp || !ctx.Entities.Contains(act.Target) {
		r.log(ctx).WithField("target", act.Target.String()).Debug("Fire ignored: invalid target")
		return
	}

	r.ammo.Set(ctx, r.Ammo()-1)
	damage := systems.ProjectileDamage(r.spec.Large, &r.Store)
	r.CallObservers(ctx, "Shoot", act.Target.String())

	ctx.SendChild(domain.CombatHit{
		Shooter: r.Identity(),
		Target:  act.Target,
		Damage:  damage,
	}, act.Target, act.Plate)
}

// hit - сторона цели: урон через плиту брони.
func (r *Robot) hit(ctx *engine.Sim, hit domain.CombatHit, plate int) {
	if plate < 0 || !r.armor.Has(plate) {
		r.log(ctx).WithError(engine.ErrMissingChild).WithField("plate", plate).Warn("Hit on unknown armor plate")
		return
	}
	if !r.Alive() {
		return
	}

	report := systems.ApplyDamage(hit.Shooter, r.Identity(), hit.Damage, &r.Store)
	if report.Blocked {
		r.CallObservers(ctx, "Blocked", plate)
		return
	}

	hp := max(0, r.HP()-report.Final)
	r.hp.Set(ctx, hp)
	r.CallObservers(ctx, "FlashPlate", plate)

	if hp == 0 {
		r.die(ctx, hit.Shooter, true)
	}
}

// die переводит робота в мёртвое состояние. announce - публиковать ли Combat.Kill.
func (r *Robot) die(ctx *engine.Sim, killer types.Identity, announce bool) {
	r.hp.Set(ctx, 0)
	r.alive.Set(ctx, false)
	r.moving = false
	r.regen = 0

	ctx.SendChild(domain.LightSet{Color: domain.LightOff}, r.Identity(), domain.AllChildren)
	r.log(ctx).WithField("killer", killer.String()).Info("Robot destroyed")

	if announce {
		ctx.Send(domain.CombatKill{Victim: r.Identity(), Killer: killer})
	}
}

func (r *Robot) revive(ctx *engine.Sim) {
	r.hp.Set(ctx, r.MaxHP())
	r.alive.Set(ctx, true)
	r.AddEffect(ctx, domain.Effect{
		Kind:     domain.EffectReviveInvulnerable,
		Source:   r.Identity(),
		Duration: domain.ReviveInvulnerableDuration,
	})
	ctx.SendChild(domain.LightSet{Color: domain.LightOn}, r.Identity(), domain.AllChildren)
	r.log(ctx).Info("Robot revived")
}
