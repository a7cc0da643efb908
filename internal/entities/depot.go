package entities

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// Depot - склад стороны. Пополняет боезапас роботов своей стороны,
// стоящих в зоне пополнения (эффект Supply), не чаще SupplyCooldown на робота.
type Depot struct {
	engine.Store

	lastSupply map[types.Identity]time.Duration
	supplied   *engine.Replicated[int]
}

func NewDepot(id types.Identity) *Depot {
	d := &Depot{
		Store:      engine.NewStore(id),
		lastSupply: make(map[types.Identity]time.Duration),
	}
	d.supplied = engine.NewReplicated(&d.Store, "supplied", 0)
	return d
}

func (d *Depot) Supplied() int { return d.supplied.Get() }

func (d *Depot) InputActions() []domain.ActionName {
	return engine.UnionActions(d.Store.InputActions(), domain.NameSupplyRequest)
}

func (d *Depot) Receive(ctx *engine.Sim, a domain.Action) {
	req, ok := a.(domain.SupplyRequest)
	if !ok {
		d.Store.Receive(ctx, a)
		return
	}
	if !ctx.IsAuthority() || req.Receiver.Camp != d.Identity().Camp || req.Amount <= 0 {
		return
	}

	depotLogger := ctx.Log().WithFields(logrus.Fields{
		"component": "depot",
		"depot":     d.Identity().String(),
		"receiver":  req.Receiver.String(),
	})

	// 1. Запросивший должен стоять в зоне пополнения
	e, found := ctx.Entities.Ref(req.Receiver)
	if !found || !e.Base().HasEffect(domain.EffectSupply) {
		depotLogger.Debug("Supply refused: receiver is outside the supply zone")
		return
	}

	// 2. Ограничение частоты
	if last, seen := d.lastSupply[req.Receiver]; seen && ctx.Now()-last < ctx.Rules.SupplyCooldown {
		depotLogger.Debug("Supply refused: cooldown")
		return
	}
	d.lastSupply[req.Receiver] = ctx.Now()

	d.supplied.Set(ctx, d.Supplied()+req.Amount)
	ctx.Send(domain.SupplyDoSupply{Receiver: req.Receiver, Amount: req.Amount})
}
