package engine

import (
	"os"
	"testing"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// probe - тестовая сущность: пишет всё, что получила, и вызывает необязательный onReceive.
type probe struct {
	Store
	interest  []domain.ActionName
	received  []domain.Action
	ticks     int
	onReceive func(ctx *Sim, a domain.Action)
	onTick    func(ctx *Sim)
	initErr   error
}

func newProbe(serial uint32, interest ...domain.ActionName) *probe {
	return &probe{
		Store:    NewStore(types.NewIdentity(enums.CampRed, enums.RoleInfantry, serial, 0)),
		interest: interest,
	}
}

func (p *probe) InputActions() []domain.ActionName {
	return UnionActions(p.Store.InputActions(), p.interest...)
}

func (p *probe) Init(*Sim) error { return p.initErr }

func (p *probe) Receive(ctx *Sim, a domain.Action) {
	p.received = append(p.received, a)
	if p.onReceive != nil {
		p.onReceive(ctx, a)
	}
	p.Store.Receive(ctx, a)
}

func (p *probe) Tick(ctx *Sim, _ time.Duration) {
	p.ticks++
	if p.onTick != nil {
		p.onTick(ctx)
	}
}

func newTestSim(t *testing.T) *Sim {
	t.Helper()
	return NewSim(SimOptions{Authority: true, Seed: 1, IsolateFaults: true})
}

func mustSpawn(t *testing.T, sim *Sim, entities ...Entity) {
	t.Helper()
	for _, e := range entities {
		if err := sim.Spawn(e); err != nil {
			t.Fatalf("spawn %s: %v", e.Identity(), err)
		}
	}
}
