package actions

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// HandleMove задаёт роботу точку назначения. Само движение идёт в Tick робота.
func HandleMove(ctx handlers.Context, p api.MovePayload) (handlers.Result, error) {
	if err := ctx.RequireActor(); err != nil {
		return handlers.Result{}, err
	}

	ctx.Bus.Send(domain.RobotMove{Receiver: ctx.Actor, X: p.X, Y: p.Y})
	return handlers.EmptyResult(), nil
}
