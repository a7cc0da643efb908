package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
)

func TestDepot_SupplyGating(t *testing.T) {
	sim := newSim(t)
	red := newInfantry(enums.CampRed, 3, domain.Vec2{})
	blue := newInfantry(enums.CampBlue, 3, domain.Vec2{})
	redDepot := NewDepot(types.NewIdentity(enums.CampRed, enums.RoleDepot, 1, 0))
	blueDepot := NewDepot(types.NewIdentity(enums.CampBlue, enums.RoleDepot, 1, 0))
	spawn(t, sim, red, blue, redDepot, blueDepot)

	request := domain.SupplyRequest{Receiver: red.Identity(), Amount: 50}

	// 1. Вне зоны пополнения
	sim.Send(request)
	assert.Equal(t, arena.Infantry.Ammo, red.Ammo())

	// 2. В зоне: пополняет только свой склад
	sim.Send(domain.BuffGrant{Receiver: red.Identity(), Effect: domain.Effect{Kind: domain.EffectSupply}})
	sim.Send(request)
	assert.Equal(t, arena.Infantry.Ammo+50, red.Ammo())
	assert.Equal(t, 50, redDepot.Supplied())
	assert.Equal(t, 0, blueDepot.Supplied())

	// 3. Кулдаун на робота
	sim.Send(request)
	assert.Equal(t, arena.Infantry.Ammo+50, red.Ammo())

	steps(sim, int(sim.Rules.SupplyCooldown/dt))
	sim.Send(request)
	assert.Equal(t, arena.Infantry.Ammo+100, red.Ammo())
}

func TestBuffArea_GrantAndRevoke(t *testing.T) {
	tests := []struct {
		name      string
		camp      enums.Camp
		linger    time.Duration
		visitor   func() *Robot
		wantGrant bool
	}{
		{
			name:      "Neutral area accepts any robot",
			camp:      enums.CampNeutral,
			visitor:   func() *Robot { return newInfantry(enums.CampBlue, 3, domain.Vec2{}) },
			wantGrant: true,
		},
		{
			name:      "Own camp area",
			camp:      enums.CampRed,
			visitor:   func() *Robot { return newInfantry(enums.CampRed, 3, domain.Vec2{}) },
			wantGrant: true,
		},
		{
			name:      "Enemy area is ignored",
			camp:      enums.CampRed,
			visitor:   func() *Robot { return newInfantry(enums.CampBlue, 3, domain.Vec2{}) },
			wantGrant: false,
		},
		{
			name:      "Lingering effect",
			camp:      enums.CampNeutral,
			linger:    time.Second,
			visitor:   func() *Robot { return newInfantry(enums.CampRed, 3, domain.Vec2{}) },
			wantGrant: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newSim(t)
			sensor := engine.NewSensor("island", robotsOf(tt.camp))
			area := NewBuffArea(types.NewIdentity(tt.camp, enums.RoleBuffArea, 1, 0), sensor, domain.EffectResourceIsland, 0, tt.linger)
			visitor := tt.visitor()
			spawn(t, sim, visitor, area)

			sensor.NotifyEnter(visitor.Identity())
			sim.Step(dt)
			assert.Equal(t, tt.wantGrant, visitor.HasEffect(domain.EffectResourceIsland))
			if !tt.wantGrant {
				assert.Equal(t, 0, area.Occupants())
				return
			}
			assert.Equal(t, 1, area.Occupants())

			sensor.NotifyExit(visitor.Identity())
			sim.Step(dt)
			assert.Equal(t, 0, area.Occupants())
			assert.Equal(t, tt.linger > 0, visitor.HasEffect(domain.EffectResourceIsland))

			if tt.linger > 0 {
				steps(sim, int(tt.linger/dt))
				assert.False(t, visitor.HasEffect(domain.EffectResourceIsland))
			}
		})
	}
}

func TestBuffArea_ReenterDuringLinger(t *testing.T) {
	sim := newSim(t)
	sensor := engine.NewSensor("island", robotsOf(enums.CampNeutral))
	area := NewBuffArea(types.NewIdentity(enums.CampNeutral, enums.RoleBuffArea, 1, 0), sensor, domain.EffectResourceIsland, 0, time.Second)
	visitor := newInfantry(enums.CampRed, 3, domain.Vec2{})
	spawn(t, sim, visitor, area)
	require.Equal(t, domain.StackUnique, domain.EffectResourceIsland.Policy())

	sensor.NotifyEnter(visitor.Identity())
	sim.Step(dt)
	sensor.NotifyExit(visitor.Identity())
	sim.Step(dt)
	lingering, ok := visitor.Effect(domain.EffectResourceIsland)
	require.True(t, ok)
	require.True(t, lingering.Expires())

	// Вернулся, пока остаток ещё действует: эффект снова бессрочный
	sensor.NotifyEnter(visitor.Identity())
	sim.Step(dt)
	current, ok := visitor.Effect(domain.EffectResourceIsland)
	require.True(t, ok)
	assert.False(t, current.Expires())

	steps(sim, int(2*time.Second/dt))
	assert.True(t, visitor.HasEffect(domain.EffectResourceIsland), "robot inside keeps the effect")
	assert.Equal(t, 1, area.Occupants())
}
