package actions

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// HandleSupply просит склад пополнить боезапас. Склад сам проверяет зону и перезарядку.
func HandleSupply(ctx handlers.Context, p api.SupplyPayload) (handlers.Result, error) {
	if err := ctx.RequireActor(); err != nil {
		return handlers.Result{}, err
	}

	ctx.Bus.Send(domain.SupplyRequest{Receiver: ctx.Actor, Amount: p.Amount})
	return handlers.EmptyResult(), nil
}
