package entities

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// CapturePoint - нейтральная точка захвата.
//
// Датчик публикует Occupy.Begin/Occupy.End, сама точка их и обрабатывает:
// первая пришедшая сторона "защёлкивается" и запускает отсчёт. Если она продержалась
// CaptureDuration, публикуется Occupy.Occupied (ровно один раз на отсчёт).
type CapturePoint struct {
	engine.Store

	sensor *engine.Sensor
	util   *engine.SensorUtility

	presence  map[enums.Camp]int
	remaining time.Duration

	latched    *engine.Replicated[enums.Camp]
	occupiedBy *engine.Replicated[enums.Camp]
	progress   *engine.Replicated[float64]
}

func NewCapturePoint(id types.Identity, sensor *engine.Sensor) *CapturePoint {
	c := &CapturePoint{
		Store:    engine.NewStore(id),
		sensor:   sensor,
		presence: make(map[enums.Camp]int),
	}
	c.latched = engine.NewReplicated(&c.Store, "latched", enums.CampNeutral)
	c.occupiedBy = engine.NewReplicated(&c.Store, "occupiedBy", enums.CampNeutral)
	c.progress = engine.NewReplicated(&c.Store, "progress", 0.0)
	return c
}

func (c *CapturePoint) Latched() enums.Camp    { return c.latched.Get() }
func (c *CapturePoint) OccupiedBy() enums.Camp { return c.occupiedBy.Get() }
func (c *CapturePoint) Progress() float64      { return c.progress.Get() }
func (c *CapturePoint) Presence(camp enums.Camp) int {
	return c.presence[camp]
}

func (c *CapturePoint) Init(ctx *engine.Sim) error {
	util, err := engine.NewSensorUtility(c.sensor, c.onEnter, c.onExit)
	if err != nil {
		return err
	}
	c.util = util
	c.remaining = ctx.Rules.CaptureDuration
	return nil
}

func (c *CapturePoint) OnDespawn(ctx *engine.Sim) {
	if c.util != nil {
		c.util.Reset(ctx)
	}
}

func (c *CapturePoint) InputActions() []domain.ActionName {
	return engine.UnionActions(c.Store.InputActions(),
		domain.NameOccupyBegin,
		domain.NameOccupyEnd,
		domain.NameOccupyOccupied,
		domain.NameOccupyLeft,
	)
}

// --- ДАТЧИК ---

func (c *CapturePoint) onEnter(ctx *engine.Sim, who types.Identity) {
	if ctx.IsAuthority() {
		ctx.Send(domain.OccupyBegin{Point: c.Identity(), Camp: who.Camp, Who: who})
	}
}

func (c *CapturePoint) onExit(ctx *engine.Sim, who types.Identity) {
	if ctx.IsAuthority() {
		ctx.Send(domain.OccupyEnd{Point: c.Identity(), Camp: who.Camp, Who: who})
	}
}

// --- ДЕЙСТВИЯ ---

func (c *CapturePoint) Receive(ctx *engine.Sim, a domain.Action) {
	if !ctx.IsAuthority() {
		return
	}

	switch act := a.(type) {
	case domain.OccupyBegin:
		if act.Point != c.Identity() {
			return
		}
		c.presence[act.Camp]++
		// Пока точка занята, защёлка не меняется
		if c.OccupiedBy() == enums.CampNeutral && c.Latched() != act.Camp {
			c.latch(ctx, act.Camp)
		}

	case domain.OccupyEnd:
		if act.Point != c.Identity() {
			return
		}
		if c.presence[act.Camp] > 0 {
			c.presence[act.Camp]--
		}
		if act.Camp != c.Latched() || c.presence[act.Camp] > 0 {
			return
		}
		if c.OccupiedBy() == act.Camp {
			ctx.Send(domain.OccupyLeft{Point: c.Identity(), Camp: act.Camp})
		}
		if other := act.Camp.Opponent(); c.presence[other] > 0 {
			c.latch(ctx, other)
		} else {
			c.latch(ctx, enums.CampNeutral)
		}

	case domain.OccupyOccupied:
		if act.Point != c.Identity() {
			return
		}
		c.occupiedBy.Set(ctx, act.Camp)
		grantCamp(ctx, act.Camp, domain.Effect{Kind: domain.EffectCapturedHighland, Source: c.Identity()})
		c.log(ctx).WithField("camp", act.Camp.String()).Info("Point occupied")

	case domain.OccupyLeft:
		if act.Point != c.Identity() || c.OccupiedBy() != act.Camp {
			return
		}
		c.occupiedBy.Set(ctx, enums.CampNeutral)
		revokeCamp(ctx, act.Camp, domain.EffectCapturedHighland)
		c.log(ctx).WithField("camp", act.Camp.String()).Info("Point left")

	default:
		c.Store.Receive(ctx, a)
	}
}

// latch назначает сторону отсчёта и перезапускает его.
func (c *CapturePoint) latch(ctx *engine.Sim, camp enums.Camp) {
	c.latched.Set(ctx, camp)
	c.remaining = ctx.Rules.CaptureDuration
	c.progress.Set(ctx, 0)
}

func (c *CapturePoint) Tick(ctx *engine.Sim, dt time.Duration) {
	c.util.Poll(ctx)
	if !ctx.IsAuthority() {
		return
	}

	latched := c.Latched()
	if latched == enums.CampNeutral || c.OccupiedBy() != enums.CampNeutral || c.remaining <= 0 {
		return
	}

	c.remaining -= dt
	if c.remaining > 0 {
		c.progress.Set(ctx, 1-float64(c.remaining)/float64(ctx.Rules.CaptureDuration))
		return
	}
	c.remaining = 0
	c.progress.Set(ctx, 1)
	ctx.Send(domain.OccupyOccupied{Point: c.Identity(), Camp: latched})
}

func (c *CapturePoint) log(ctx *engine.Sim) *logrus.Entry {
	return ctx.Log().WithFields(logrus.Fields{
		"component": "capture_point",
		"point":     c.Identity().String(),
	})
}
