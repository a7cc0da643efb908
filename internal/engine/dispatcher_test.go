package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

func names(actions []domain.Action) []domain.ActionName {
	result := make([]domain.ActionName, 0, len(actions))
	for _, a := range actions {
		result = append(result, a.ActionName())
	}
	return result
}

func TestDispatcher_ExactlyOnceToInterested(t *testing.T) {
	sim := newTestSim(t)
	a := newProbe(1, domain.NameStageStart)
	b := newProbe(2, domain.NameStageStart, domain.NameStageEnd)
	c := newProbe(3, domain.NameStageEnd)
	mustSpawn(t, sim, a, b, c)

	sim.Send(domain.StageStart{})

	assert.Len(t, a.received, 1)
	assert.Len(t, b.received, 1)
	assert.Empty(t, c.received, "receiver without interest must not be called")
}

func TestDispatcher_RegistrationOrder(t *testing.T) {
	sim := newTestSim(t)
	var order []uint32
	for serial := uint32(1); serial <= 5; serial++ {
		p := newProbe(serial, domain.NameStageStart)
		p.onReceive = func(_ *Sim, _ domain.Action) { order = append(order, p.Identity().Serial) }
		mustSpawn(t, sim, p)
	}

	sim.Send(domain.StageStart{})

	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, order)
}

func TestDispatcher_ReentrantDepthFirst(t *testing.T) {
	sim := newTestSim(t)
	var trace []string

	first := newProbe(1, domain.NameStageStart, domain.NameStageOutpostFall)
	second := newProbe(2, domain.NameStageStart, domain.NameStageOutpostFall)

	first.onReceive = func(ctx *Sim, a domain.Action) {
		trace = append(trace, "first:"+string(a.ActionName()))
		if _, ok := a.(domain.StageStart); ok {
			ctx.Send(domain.StageOutpostFall{Camp: enums.CampBlue})
		}
	}
	second.onReceive = func(_ *Sim, a domain.Action) {
		trace = append(trace, "second:"+string(a.ActionName()))
	}
	mustSpawn(t, sim, first, second)

	sim.Send(domain.StageStart{})

	// Вложенное действие доставлено всем до того, как внешнее дошло до second
	assert.Equal(t, []string{
		"first:Stage.Start",
		"first:Stage.OutpostFall",
		"second:Stage.OutpostFall",
		"second:Stage.Start",
	}, trace)
}

func TestDispatcher_UnsubscribeDuringDelivery(t *testing.T) {
	sim := newTestSim(t)
	killer := newProbe(1, domain.NameStageStart)
	victim := newProbe(2, domain.NameStageStart)
	late := newProbe(3, domain.NameStageStart)

	killer.onReceive = func(ctx *Sim, _ domain.Action) {
		ctx.Despawn(victim.Identity())
		// Новая сущность не попадает в текущую доставку
		mustSpawn(t, ctx, late)
	}
	mustSpawn(t, sim, killer, victim)

	sim.Send(domain.StageStart{})

	assert.Len(t, killer.received, 1)
	assert.Empty(t, victim.received, "despawned receiver must be skipped")
	assert.Empty(t, late.received, "receiver added during delivery must wait for the next send")
	assert.Equal(t, StateDestroyed, victim.State())

	sim.Send(domain.StageStart{})
	assert.Len(t, late.received, 1)
}

func TestDispatcher_FaultIsolation(t *testing.T) {
	sim := newTestSim(t)
	broken := newProbe(1, domain.NameStageStart)
	healthy := newProbe(2, domain.NameStageStart)
	broken.onReceive = func(*Sim, domain.Action) { panic("boom") }
	mustSpawn(t, sim, broken, healthy)

	assert.NotPanics(t, func() { sim.Send(domain.StageStart{}) })
	assert.Len(t, healthy.received, 1)
}

func TestDispatcher_FaultPropagatesWhenNotIsolated(t *testing.T) {
	sim := NewSim(SimOptions{Authority: true, IsolateFaults: false})
	broken := newProbe(1, domain.NameStageStart)
	broken.onReceive = func(*Sim, domain.Action) { panic("boom") }
	mustSpawn(t, sim, broken)

	assert.Panics(t, func() { sim.Send(domain.StageStart{}) })
}

func TestDispatcher_DepthLimit(t *testing.T) {
	sim := NewSim(SimOptions{Authority: true, MaxDepth: 8, IsolateFaults: true})
	loop := newProbe(1, domain.NameStageStart)
	loop.onReceive = func(ctx *Sim, a domain.Action) { ctx.Send(a) }
	mustSpawn(t, sim, loop)

	assert.NotPanics(t, func() { sim.Send(domain.StageStart{}) })
	assert.Len(t, loop.received, 8)
	assert.Zero(t, sim.Dispatcher.depth, "depth must unwind after delivery")
}

func TestDispatcher_InterestClosure(t *testing.T) {
	sim := newTestSim(t)
	p := newProbe(1, domain.NameStageStart)
	mustSpawn(t, sim, p)

	subs, ok := sim.Dispatcher.Subscriptions(p.Identity())
	require.True(t, ok)
	// Действия базового Store входят в набор наследника
	assert.Subset(t, subs, []domain.ActionName{domain.NameBuffGrant, domain.NameBuffRevoke, domain.NameStageStart})

	assert.Equal(t, p.Identity(), sim.Dispatcher.Interested(domain.NameBuffGrant)[0])
}

func TestDispatcher_DoubleSubscribe(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{}, newTestSim(t).Log(), nil)
	p := newProbe(1)

	require.NoError(t, d.Subscribe(p))
	assert.ErrorIs(t, d.Subscribe(p), ErrAlreadySubscribed)
	assert.True(t, d.Unsubscribe(p.Identity()))
	assert.False(t, d.Unsubscribe(p.Identity()))
}

func TestDispatcher_SendHooks(t *testing.T) {
	sim := newTestSim(t)
	var seen []domain.ActionName
	sim.Dispatcher.OnSend(func(_ uint32, a domain.Action) { seen = append(seen, a.ActionName()) })

	// Хук видит и действия без подписчиков
	sim.Send(domain.StageEnd{Winner: enums.CampRed})
	sim.SendChild(domain.LightSet{Color: domain.LightOn}, newProbe(9).Identity(), 2)

	assert.Equal(t, []domain.ActionName{domain.NameStageEnd, domain.NameLightSet}, seen)
}

func TestDispatcher_SendChildWrapsAction(t *testing.T) {
	sim := newTestSim(t)
	p := newProbe(1, domain.NameLightSet)
	mustSpawn(t, sim, p)

	sim.SendChild(domain.LightSet{Color: domain.LightBlink}, p.Identity(), 3)

	require.Len(t, p.received, 1)
	child, ok := p.received[0].(domain.ChildAction)
	require.True(t, ok, "got %T", p.received[0])
	assert.Equal(t, 3, child.Child)
	assert.Equal(t, p.Identity(), child.Parent)
	assert.Equal(t, domain.LightSet{Color: domain.LightBlink}, child.Inner)
	assert.Equal(t, []domain.ActionName{domain.NameLightSet}, names(p.received))
}
