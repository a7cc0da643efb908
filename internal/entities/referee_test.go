package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
)

var refereeID = types.NewIdentity(enums.CampNeutral, enums.RoleReferee, 1, 0)

func shortRules() domain.Rules {
	rules := domain.DefaultRules()
	rules.MatchDuration = 10 * time.Second
	rules.ReviveDelay = 2 * time.Second
	rules.RuneEnableSchedule = []time.Duration{time.Second}
	return rules
}

func TestReferee_StagesAndSchedule(t *testing.T) {
	sim := engine.NewSim(engine.SimOptions{Authority: true, Rules: shortRules()})
	power := NewPowerRune(runeID, sim.Rules.RuneBranches, nil)
	ref := NewReferee(refereeID)
	ended := newListener(domain.NameStageEnd)
	spawn(t, sim, power, ref, ended)

	assert.Equal(t, domain.StagePrepare, ref.Stage())
	sim.Step(dt)
	assert.Equal(t, domain.StageRunning, ref.Stage())

	// Руна включается по расписанию
	ticks := stepUntil(sim, 200, func() bool { return power.Phase() == RuneAvailable })
	assert.Equal(t, 50, ticks)

	// Без баз по времени - ничья
	steps(sim, 500)
	assert.Equal(t, domain.StageEnded, ref.Stage())
	assert.Equal(t, enums.CampNeutral, ref.Winner())
	assert.Len(t, of[domain.StageEnd](ended), 1)
}

func TestReferee_KillCountAndRevive(t *testing.T) {
	sim := engine.NewSim(engine.SimOptions{Authority: true, Rules: shortRules()})
	hero := NewRobot(robotID(enums.CampRed, enums.RoleHero, 1), arena.Hero, domain.Vec2{}, OpenTerrain())
	blue := newInfantry(enums.CampBlue, 3, domain.Vec2{})
	ref := NewReferee(refereeID)
	spawn(t, sim, hero, blue, ref)
	sim.Step(dt)

	fire := domain.CombatFire{Shooter: hero.Identity(), Target: blue.Identity()}
	sim.Send(fire)
	sim.Send(fire)
	require.False(t, blue.Alive())
	assert.Equal(t, 1, ref.Kills(enums.CampRed))
	assert.Equal(t, 0, ref.Kills(enums.CampBlue))

	// Возрождение через ReviveDelay
	ticks := stepUntil(sim, 500, blue.Alive)
	assert.Equal(t, 100, ticks)
	assert.True(t, blue.HasEffect(domain.EffectReviveInvulnerable))
}

func TestReferee_BaseFallEndsMatch(t *testing.T) {
	sim := engine.NewSim(engine.SimOptions{Authority: true, Rules: shortRules()})
	base := NewBase(types.NewIdentity(enums.CampBlue, enums.RoleBase, 1, 0), arena.BaseHP, arena.BasePlates, domain.Vec2{})
	ref := NewReferee(refereeID)
	spawn(t, sim, base, ref)
	sim.Step(dt)

	sim.Send(domain.CombatKill{Victim: base.Identity(), Killer: robotID(enums.CampRed, enums.RoleHero, 1)})

	assert.Equal(t, domain.StageEnded, ref.Stage())
	assert.Equal(t, enums.CampRed, ref.Winner())
}

func TestReferee_TimeoutJudgesByBaseHealth(t *testing.T) {
	sim := engine.NewSim(engine.SimOptions{Authority: true, Rules: shortRules()})
	hero := NewRobot(robotID(enums.CampBlue, enums.RoleHero, 1), arena.Hero, domain.Vec2{}, OpenTerrain())
	red := NewBase(types.NewIdentity(enums.CampRed, enums.RoleBase, 1, 0), arena.BaseHP, arena.BasePlates, domain.Vec2{})
	blue := NewBase(types.NewIdentity(enums.CampBlue, enums.RoleBase, 1, 0), arena.BaseHP, arena.BasePlates, domain.Vec2{})
	ref := NewReferee(refereeID)
	spawn(t, sim, hero, red, blue, ref)

	sim.Send(domain.CombatFire{Shooter: hero.Identity(), Target: red.Identity()})
	require.Less(t, red.Health(), blue.Health())

	stepUntil(sim, 1000, func() bool { return ref.Stage() == domain.StageEnded })
	assert.Equal(t, enums.CampBlue, ref.Winner())
}

func TestReferee_CountsCapturesAndRunes(t *testing.T) {
	sim := newSim(t)
	ref := NewReferee(refereeID)
	spawn(t, sim, ref)

	point := types.NewIdentity(enums.CampNeutral, enums.RoleCapturePoint, 1, 0)
	sim.Send(domain.OccupyOccupied{Point: point, Camp: enums.CampBlue})
	sim.Send(domain.RuneActivated{Rune: runeID, Camp: enums.CampRed})

	assert.Equal(t, 1, ref.Captures(enums.CampBlue))
	assert.Equal(t, 0, ref.Captures(enums.CampRed))
	assert.Equal(t, 1, ref.Activations(enums.CampRed))
}
