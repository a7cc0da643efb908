package entities

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/systems"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
)

// Build материализует раскладку в контексте матча.
//
// Создаёт источник триггеров, регистрирует в нём тела роботов и объёмы датчиков,
// затем проводит каждую сущность через Spawn в порядке раскладки.
// Любая ошибка конфигурации прерывает сборку.
func Build(sim *engine.Sim, layout arena.Layout) error {
	world := systems.NewTriggerWorld()
	sim.AddSystem(world)

	terrain := Terrain{Field: layout.Field, Obstacles: layout.Obstacles}

	for _, p := range layout.Placements {
		e, err := materialize(sim, world, terrain, p)
		if err != nil {
			return fmt.Errorf("layout %q: placement %s: %w", layout.Name, p.ID, err)
		}
		if err := sim.Spawn(e); err != nil {
			return fmt.Errorf("layout %q: %w", layout.Name, err)
		}
	}

	sim.Log().WithFields(logrus.Fields{
		"layout":   layout.Name,
		"entities": sim.Entities.Len(),
	}).Info("Layout materialized")
	return nil
}

func materialize(sim *engine.Sim, world *systems.TriggerWorld, terrain Terrain, p arena.Placement) (engine.Entity, error) {
	switch p.Kind {
	case arena.KindRobot:
		robot := NewRobotFor(p.ID, p.Robot, p.Pos, terrain)
		world.AddBody(robot)
		return robot, nil

	case arena.KindCapturePoint:
		sensor := engine.NewSensor(p.ID.String(), robotsOnly)
		world.AddVolume(sensor, p.Zone)
		return NewCapturePoint(p.ID, sensor), nil

	case arena.KindBuffArea:
		sensor := engine.NewSensor(p.ID.String(), robotsOf(p.ID.Camp))
		world.AddVolume(sensor, p.Zone)
		return NewBuffArea(p.ID, sensor, p.Effect, p.Value, p.Linger), nil

	case arena.KindDepot:
		return NewDepot(p.ID), nil

	case arena.KindOutpost:
		return NewStructure(p.ID, p.HP, arena.OutpostPlates, p.Pos), nil

	case arena.KindBase:
		return NewBase(p.ID, p.HP, arena.BasePlates, p.Pos), nil

	case arena.KindPowerRune:
		sensor := engine.NewSensor(p.ID.String(), robotsOnly)
		world.AddVolume(sensor, p.Zone)
		return NewPowerRune(p.ID, sim.Rules.RuneBranches, sensor), nil

	case arena.KindReferee:
		return NewReferee(p.ID), nil

	default:
		return nil, fmt.Errorf("unknown placement kind %q", p.Kind)
	}
}
