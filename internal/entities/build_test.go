package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
)

func TestBuild_StandardLayout(t *testing.T) {
	layout, err := arena.Standard()
	require.NoError(t, err)

	sim := newSim(t)
	require.NoError(t, Build(sim, layout))
	assert.Equal(t, len(layout.Placements), sim.Entities.Len())

	// Начальные эффекты строений и часовых
	for e := range sim.Entities.ByRole(enums.RoleBase) {
		assert.True(t, e.Base().HasEffect(domain.EffectBaseDefense), e.Identity().String())
	}
	for e := range sim.Entities.ByRole(enums.RoleSentinel) {
		assert.IsType(t, &Sentinel{}, e)
		assert.True(t, e.Base().HasEffect(domain.EffectSentinelInvulnerable))
	}

	steps(sim, 10)
	ref, ok := engine.RefAs[*Referee](sim.Entities, types.NewIdentity(enums.CampNeutral, enums.RoleReferee, 1, 0))
	require.True(t, ok)
	assert.Equal(t, domain.StageRunning, ref.Stage())
}

func TestBuild_TriggerWorldFeedsSensors(t *testing.T) {
	layout, err := arena.NewLayout("trigger").
		WithSize(10, 10).
		Robot(enums.CampRed, enums.RoleInfantry, 3, domain.Vec2{X: 1, Y: 1}).
		CapturePoint(domain.Vec2{X: 5, Y: 5}, 1).
		Build()
	require.NoError(t, err)

	sim := newSim(t)
	require.NoError(t, Build(sim, layout))

	robot, ok := engine.RefAs[*Robot](sim.Entities, robotID(enums.CampRed, enums.RoleInfantry, 3))
	require.True(t, ok)
	point, ok := engine.RefAs[*CapturePoint](sim.Entities, types.NewIdentity(enums.CampNeutral, enums.RoleCapturePoint, 1, 0))
	require.True(t, ok)

	// Робот доезжает до точки, и датчик её защёлкивает
	sim.Send(domain.RobotMove{Receiver: robot.Identity(), X: 5, Y: 5})
	ticks := stepUntil(sim, 500, func() bool { return point.Latched() == enums.CampRed })
	assert.Positive(t, ticks)
	assert.Equal(t, 1, point.Presence(enums.CampRed))
}

func TestBuild_DespawnedRobotLeavesCapturePoint(t *testing.T) {
	layout, err := arena.NewLayout("despawn").
		WithSize(10, 10).
		Robot(enums.CampRed, enums.RoleInfantry, 3, domain.Vec2{X: 5, Y: 5}).
		CapturePoint(domain.Vec2{X: 5, Y: 5}, 1).
		Build()
	require.NoError(t, err)

	sim := newSim(t)
	require.NoError(t, Build(sim, layout))
	point, ok := engine.RefAs[*CapturePoint](sim.Entities, types.NewIdentity(enums.CampNeutral, enums.RoleCapturePoint, 1, 0))
	require.True(t, ok)

	steps(sim, 5)
	require.Equal(t, 1, point.Presence(enums.CampRed))
	require.Equal(t, enums.CampRed, point.Latched())

	require.True(t, sim.Despawn(robotID(enums.CampRed, enums.RoleInfantry, 3)))
	steps(sim, 400)

	// Уничтоженный робот не держит точку и не захватывает её
	assert.Zero(t, point.Presence(enums.CampRed))
	assert.Equal(t, enums.CampNeutral, point.Latched())
	assert.Equal(t, enums.CampNeutral, point.OccupiedBy())
}

func TestBuild_RejectsUnknownKind(t *testing.T) {
	layout := arena.Layout{
		Name:       "broken",
		Field:      domain.Rect(domain.Vec2{}, 10, 10),
		Placements: []arena.Placement{{Kind: "TELEPORT", ID: types.NewIdentity(enums.CampRed, enums.RoleOre, 1, 0)}},
	}
	err := Build(newSim(t), layout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEPORT")
}

func TestBuild_DuplicateIdentityIsFatal(t *testing.T) {
	id := robotID(enums.CampRed, enums.RoleInfantry, 3)
	layout := arena.Layout{
		Name:  "dup",
		Field: domain.Rect(domain.Vec2{}, 10, 10),
		Placements: []arena.Placement{
			{Kind: arena.KindRobot, ID: id, Robot: arena.Infantry},
			{Kind: arena.KindRobot, ID: id, Robot: arena.Infantry},
		},
	}
	err := Build(newSim(t), layout)
	assert.ErrorIs(t, err, engine.ErrDuplicateIdentity)
}
