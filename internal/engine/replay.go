package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/arena"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

// Playback - результат проигрывания журнала.
type Playback struct {
	Sim     *Sim
	Applied int
	Events  []domain.MatchEvent
}

// Replay заново проигрывает матч: та же раскладка, то же зерно, те же команды на тех же тиках.
//
// Журнал хранит только входы, поэтому всё остальное (урон, захваты, руна) выводится заново.
// extraTicks - сколько тиков прокрутить после последней записи.
func Replay(cfg Config, session *domain.ReplaySession, build MatchBuilder, extraTicks int) (*Playback, error) {
	layout, err := arena.ByName(session.Layout)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", session.MatchID, err)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"component": "replay",
		"match":     session.MatchID,
	})
	sim := NewSim(cfg.SimOptions(session.Seed, log))

	pb := &Playback{Sim: sim}
	sim.Dispatcher.OnSend(func(tick uint32, a domain.Action) {
		if domain.Notable(a.ActionName()) {
			pb.Events = append(pb.Events, domain.MatchEvent{Tick: tick, Name: a.ActionName(), Data: a})
		}
	})

	if err := build(sim, layout); err != nil {
		return nil, fmt.Errorf("replay %s: %w", session.MatchID, err)
	}

	dt := cfg.TickInterval()
	for idx, entry := range session.Entries {
		// 1. Догоняем тик, на котором команда была принята
		for sim.Tick() < entry.Tick {
			sim.Step(dt)
		}

		// 2. Публикуем ровно то же действие
		a, err := entry.Decode()
		if err != nil {
			return pb, fmt.Errorf("replay %s: entry %d: %w", session.MatchID, idx, err)
		}
		sim.Send(a)
		pb.Applied++
	}

	for n := 0; n < extraTicks; n++ {
		sim.Step(dt)
	}

	log.WithFields(logrus.Fields{
		"entries": pb.Applied,
		"ticks":   sim.Tick(),
		"events":  len(pb.Events),
	}).Info("Replay finished")
	return pb, nil
}
