package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
)

func TestStructure_OutpostFallLiftsBaseDefense(t *testing.T) {
	sim := newSim(t)
	hero := NewRobot(robotID(enums.CampBlue, enums.RoleHero, 1), arena.Hero, domain.Vec2{}, OpenTerrain())
	outpost := NewStructure(types.NewIdentity(enums.CampRed, enums.RoleOutpost, 1, 0), 150, arena.OutpostPlates, domain.Vec2{X: 5})
	base := NewBase(types.NewIdentity(enums.CampRed, enums.RoleBase, 1, 0), 1000, arena.BasePlates, domain.Vec2{X: 1})
	events := newListener(domain.NameStageOutpostFall, domain.NameCombatKill)
	spawn(t, sim, hero, outpost, base, events)

	require.True(t, base.HasEffect(domain.EffectBaseDefense))

	// 1. База под защитой: половина урона
	sim.Send(domain.CombatFire{Shooter: hero.Identity(), Target: base.Identity(), Plate: 1})
	assert.Equal(t, 950, base.Health())

	// 2. Аванпост падает со второго попадания
	sim.Send(domain.CombatFire{Shooter: hero.Identity(), Target: outpost.Identity()})
	assert.Equal(t, 50, outpost.Health())
	sim.Send(domain.CombatFire{Shooter: hero.Identity(), Target: outpost.Identity()})

	assert.False(t, outpost.Alive())
	assert.Equal(t, domain.LightOff, outpost.Armor().Color(0))
	require.Len(t, of[domain.StageOutpostFall](events), 1)
	assert.Equal(t, enums.CampRed, of[domain.StageOutpostFall](events)[0].Camp)
	assert.Len(t, of[domain.CombatKill](events), 1)

	// 3. Защита базы снята
	assert.False(t, base.HasEffect(domain.EffectBaseDefense))
	sim.Send(domain.CombatFire{Shooter: hero.Identity(), Target: base.Identity()})
	assert.Equal(t, 850, base.Health())
}

func TestStructure_AdminKillStillFalls(t *testing.T) {
	sim := newSim(t)
	base := NewBase(types.NewIdentity(enums.CampBlue, enums.RoleBase, 1, 0), arena.BaseHP, arena.BasePlates, domain.Vec2{})
	events := newListener(domain.NameStageBaseFall, domain.NameCombatKill)
	spawn(t, sim, base, events)

	sim.Send(domain.CombatKill{Victim: base.Identity(), Killer: robotID(enums.CampRed, enums.RoleHero, 1)})

	assert.False(t, base.Alive())
	assert.Equal(t, 0, base.Health())
	require.Len(t, of[domain.StageBaseFall](events), 1)
	assert.Equal(t, enums.CampBlue, of[domain.StageBaseFall](events)[0].Camp)
	assert.Len(t, of[domain.CombatKill](events), 1)
}

func TestStructure_UnknownPlate(t *testing.T) {
	sim := newSim(t)
	hero := NewRobot(robotID(enums.CampBlue, enums.RoleHero, 1), arena.Hero, domain.Vec2{}, OpenTerrain())
	outpost := NewStructure(types.NewIdentity(enums.CampRed, enums.RoleOutpost, 1, 0), arena.OutpostHP, arena.OutpostPlates, domain.Vec2{})
	spawn(t, sim, hero, outpost)

	sim.Send(domain.CombatFire{Shooter: hero.Identity(), Target: outpost.Identity(), Plate: 3})
	assert.Equal(t, arena.OutpostHP, outpost.Health())
}
