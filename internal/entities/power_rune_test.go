package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

var runeID = types.NewIdentity(enums.CampNeutral, enums.RolePowerRune, 1, 0)

type runeFixture struct {
	sim    *engine.Sim
	rune   *PowerRune
	red    *Robot
	blue   *Robot
	events *listener
}

func newRuneFixture(t *testing.T, sensor *engine.Sensor) *runeFixture {
	t.Helper()
	f := &runeFixture{
		sim:    newSim(t),
		red:    newInfantry(enums.CampRed, 3, domain.Vec2{}),
		blue:   newInfantry(enums.CampBlue, 3, domain.Vec2{}),
		events: newListener(domain.NameRuneActivated),
	}
	f.rune = NewPowerRune(runeID, f.sim.Rules.RuneBranches, sensor)
	spawn(t, f.sim, f.red, f.blue, f.rune, f.events)
	return f
}

// activate переводит руну в Activating для красных.
func (f *runeFixture) activate(t *testing.T) {
	t.Helper()
	f.sim.Send(domain.RuneEnable{Rune: runeID})
	f.sim.Send(domain.RuneStart{Rune: runeID, Camp: enums.CampRed})
	require.Equal(t, RuneActivating, f.rune.Phase())
}

func (f *runeFixture) hit(branch int) {
	f.sim.Send(domain.RuneHit{Rune: runeID, Camp: enums.CampRed, Branch: branch})
}

// assertArmedFresh проверяет состояние после сброса: всё Idle, кроме одной CanHit.
func assertArmedFresh(t *testing.T, p *PowerRune) {
	t.Helper()
	assert.Equal(t, 0, p.LitCount())
	canHit := 0
	for i := range domain.RuneBranches {
		switch p.Branch(i) {
		case BranchCanHit:
			canHit++
			assert.Equal(t, i, p.CanHit())
			assert.Equal(t, domain.LightBlink, p.Lights().Color(i))
		case BranchLit:
			t.Errorf("branch %d is still lit", i)
		default:
			assert.Equal(t, domain.LightOff, p.Lights().Color(i))
		}
	}
	assert.Equal(t, 1, canHit)
}

func TestPowerRune_StartRequiresAvailable(t *testing.T) {
	f := newRuneFixture(t, nil)

	f.sim.Send(domain.RuneStart{Rune: runeID, Camp: enums.CampRed})
	assert.Equal(t, RuneUnavailable, f.rune.Phase())
	assert.Equal(t, -1, f.rune.CanHit())

	f.sim.Send(domain.RuneEnable{Rune: runeID})
	assert.Equal(t, RuneAvailable, f.rune.Phase())

	f.sim.Send(domain.RuneStart{Rune: runeID, Camp: enums.CampRed})
	assert.Equal(t, RuneActivating, f.rune.Phase())
	assert.Equal(t, enums.CampRed, f.rune.Camp())
	assertArmedFresh(t, f.rune)
}

func TestPowerRune_FiveHitsActivate(t *testing.T) {
	f := newRuneFixture(t, nil)
	f.activate(t)

	for i := 1; i <= domain.RuneBranches; i++ {
		require.Equal(t, RuneActivating, f.rune.Phase(), "hit %d", i)
		armed := f.rune.CanHit()
		require.NotEqual(t, -1, armed)
		f.hit(armed)

		assert.Equal(t, BranchLit, f.rune.Branch(armed))
		assert.Equal(t, domain.LightOn, f.rune.Lights().Color(armed))
		f.sim.Step(dt)
	}

	assert.Equal(t, RuneActivated, f.rune.Phase())
	assert.Equal(t, domain.RuneBranches, f.rune.LitCount())
	require.Len(t, of[domain.RuneActivated](f.events), 1)
	assert.Equal(t, enums.CampRed, of[domain.RuneActivated](f.events)[0].Camp)

	assert.True(t, f.red.HasEffect(domain.EffectRuneAttack))
	assert.True(t, f.red.HasEffect(domain.EffectRuneDefense))
	assert.False(t, f.blue.HasEffect(domain.EffectRuneAttack))
}

func TestPowerRune_ActivatedCountdown(t *testing.T) {
	f := newRuneFixture(t, nil)
	f.activate(t)
	for range domain.RuneBranches {
		f.hit(f.rune.CanHit())
	}
	require.Equal(t, RuneActivated, f.rune.Phase())

	// 45s при 50 Гц
	steps(f.sim, 2249)
	assert.Equal(t, RuneActivated, f.rune.Phase())

	f.sim.Step(dt)
	assert.Equal(t, RuneUnavailable, f.rune.Phase())
	assert.Equal(t, enums.CampNeutral, f.rune.Camp())
	assert.Equal(t, 0, f.rune.LitCount())
	assert.Equal(t, domain.LightOff, f.rune.Lights().Color(0))

	// Баффы истекли вместе с активацией
	assert.False(t, f.red.HasEffect(domain.EffectRuneAttack))
}

func TestPowerRune_WrongHitResets(t *testing.T) {
	f := newRuneFixture(t, nil)
	f.activate(t)

	first := f.rune.CanHit()
	f.hit(first)
	f.hit(f.rune.CanHit())
	require.Equal(t, 2, f.rune.LitCount())

	// Повторное попадание в уже горящую ветвь - тоже ошибка
	f.hit(first)

	assert.Equal(t, RuneActivating, f.rune.Phase())
	assertArmedFresh(t, f.rune)
}

func TestPowerRune_TimeoutDiscardsProgress(t *testing.T) {
	f := newRuneFixture(t, nil)
	f.activate(t)

	f.hit(f.rune.CanHit())
	require.Equal(t, 1, f.rune.LitCount())

	steps(f.sim, 124)
	assert.Equal(t, 1, f.rune.LitCount())

	// 2.5s без попаданий
	f.sim.Step(dt)
	assert.Equal(t, RuneActivating, f.rune.Phase())
	assertArmedFresh(t, f.rune)

	// После сброса снова нужны все пять попаданий
	for i := range domain.RuneBranches {
		require.Equal(t, RuneActivating, f.rune.Phase(), "hit %d", i)
		f.hit(f.rune.CanHit())
	}
	assert.Equal(t, RuneActivated, f.rune.Phase())
}

func TestPowerRune_OtherCampIgnored(t *testing.T) {
	f := newRuneFixture(t, nil)
	f.activate(t)

	armed := f.rune.CanHit()
	f.sim.Send(domain.RuneHit{Rune: runeID, Camp: enums.CampBlue, Branch: armed})
	assert.Equal(t, 0, f.rune.LitCount())
	assert.Equal(t, armed, f.rune.CanHit())

	// Повторный старт во время активации не принимается
	f.sim.Send(domain.RuneStart{Rune: runeID, Camp: enums.CampBlue})
	assert.Equal(t, enums.CampRed, f.rune.Camp())
}

func TestPowerRune_LaunchZone(t *testing.T) {
	sensor := engine.NewSensor("rune", robotsOnly)
	f := newRuneFixture(t, sensor)
	f.sim.Send(domain.RuneEnable{Rune: runeID})

	f.sim.Send(domain.RuneStart{Rune: runeID, Camp: enums.CampRed})
	assert.Equal(t, RuneAvailable, f.rune.Phase())

	sensor.NotifyEnter(f.red.Identity())
	f.sim.Step(dt)
	f.sim.Send(domain.RuneStart{Rune: runeID, Camp: enums.CampRed})
	assert.Equal(t, RuneActivating, f.rune.Phase())
}

func TestPowerRune_RequiresBranches(t *testing.T) {
	sim := newSim(t)
	assert.ErrorIs(t, sim.Spawn(NewPowerRune(runeID, 0, nil)), engine.ErrMissingChild)
}
