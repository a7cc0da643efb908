package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// dummy - тело и цель для тестов подсистем.
type dummy struct {
	engine.Store
	pos   domain.Vec2
	alive bool
}

func newDummy(camp enums.Camp, serial uint32, pos domain.Vec2) *dummy {
	return &dummy{
		Store: engine.NewStore(types.NewIdentity(camp, enums.RoleInfantry, serial, 0)),
		pos:   pos,
		alive: true,
	}
}

func (d *dummy) Position() domain.Vec2 { return d.pos }
func (d *dummy) Alive() bool           { return d.alive }

func TestTriggerWorld_SamplesIntoSensors(t *testing.T) {
	sim := engine.NewSim(engine.SimOptions{Authority: true})
	world := NewTriggerWorld()
	sim.AddSystem(world)

	var entered, exited []types.Identity
	sensor := engine.NewSensor("zone", nil)
	util, err := engine.NewSensorUtility(sensor,
		func(_ *engine.Sim, id types.Identity) { entered = append(entered, id) },
		func(_ *engine.Sim, id types.Identity) { exited = append(exited, id) },
	)
	require.NoError(t, err)
	world.AddVolume(sensor, domain.Circle(domain.Vec2{X: 0, Y: 0}, 1))

	inside := newDummy(enums.CampRed, 1, domain.Vec2{X: 0.5, Y: 0})
	outside := newDummy(enums.CampBlue, 2, domain.Vec2{X: 3, Y: 0})
	world.AddBody(inside)
	world.AddBody(outside)

	sim.Step(20 * time.Millisecond)
	util.Poll(sim)
	assert.Equal(t, []types.Identity{inside.Identity()}, entered)

	// Движение внутрь и смерть того, кто был внутри
	outside.pos = domain.Vec2{X: 0, Y: 0.2}
	inside.alive = false
	sim.Step(20 * time.Millisecond)
	util.Poll(sim)

	assert.Equal(t, []types.Identity{inside.Identity(), outside.Identity()}, entered)
	assert.Equal(t, []types.Identity{inside.Identity()}, exited)

	world.RemoveBody(outside.Identity())
	sim.Step(20 * time.Millisecond)
	util.Poll(sim)
	assert.Len(t, exited, 2)
	assert.Empty(t, util.Tracked())
}

func TestTriggerWorld_DespawnRemovesBody(t *testing.T) {
	sim := engine.NewSim(engine.SimOptions{Authority: true})
	world := NewTriggerWorld()
	sim.AddSystem(world)

	zone := domain.Circle(domain.Vec2{X: 0, Y: 0}, 1)
	body := newDummy(enums.CampRed, 1, domain.Vec2{X: 0.5, Y: 0})
	world.AddBody(body)
	require.NoError(t, sim.Spawn(body))
	require.Len(t, world.Overlapping(zone), 1)

	require.True(t, sim.Despawn(body.Identity()))
	assert.Empty(t, world.Overlapping(zone))
}
