package entities

import (
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// BuffArea - зона, которая держит эффект на роботах внутри.
// С Linger > 0 эффект остаётся на столько после выхода.
type BuffArea struct {
	engine.Store

	sensor *engine.Sensor
	util   *engine.SensorUtility
	effect domain.Effect
	linger time.Duration

	occupants *engine.Replicated[int]
}

func NewBuffArea(id types.Identity, sensor *engine.Sensor, kind domain.EffectKind, value float64, linger time.Duration) *BuffArea {
	b := &BuffArea{
		Store:  engine.NewStore(id),
		sensor: sensor,
		effect: domain.Effect{Kind: kind, Value: value, Source: id},
		linger: linger,
	}
	b.occupants = engine.NewReplicated(&b.Store, "occupants", 0)
	return b
}

func (b *BuffArea) Kind() domain.EffectKind { return b.effect.Kind }
func (b *BuffArea) Occupants() int          { return b.occupants.Get() }

func (b *BuffArea) Init(*engine.Sim) error {
	util, err := engine.NewSensorUtility(b.sensor, b.onEnter, b.onExit)
	if err != nil {
		return err
	}
	b.util = util
	return nil
}

func (b *BuffArea) OnDespawn(ctx *engine.Sim) {
	if b.util != nil {
		b.util.Reset(ctx)
	}
}

func (b *BuffArea) Tick(ctx *engine.Sim, _ time.Duration) {
	b.util.Poll(ctx)
}

func (b *BuffArea) onEnter(ctx *engine.Sim, who types.Identity) {
	if !ctx.IsAuthority() {
		return
	}
	b.occupants.Set(ctx, b.Occupants()+1)
	if b.linger > 0 {
		// Остаток после прошлого выхода заменяется бессрочным эффектом зоны
		ctx.Send(domain.BuffRevoke{Receiver: who, Kind: b.effect.Kind})
	}
	ctx.Send(domain.BuffGrant{Receiver: who, Effect: b.effect})
}

func (b *BuffArea) onExit(ctx *engine.Sim, who types.Identity) {
	if !ctx.IsAuthority() {
		return
	}
	b.occupants.Set(ctx, max(0, b.Occupants()-1))
	ctx.Send(domain.BuffRevoke{Receiver: who, Kind: b.effect.Kind})

	if b.linger > 0 {
		lingering := b.effect
		lingering.Duration = b.linger
		ctx.Send(domain.BuffGrant{Receiver: who, Effect: lingering})
	}
}
