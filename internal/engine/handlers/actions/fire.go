package actions

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// HandleFire публикует выстрел. Патроны, союзников и номер плиты проверяет сам стрелок.
func HandleFire(ctx handlers.Context, p api.FirePayload) (handlers.Result, error) {
	if err := ctx.RequireActor(); err != nil {
		return handlers.Result{}, err
	}
	target, err := ctx.ResolveTarget(p.TargetID)
	if err != nil {
		return handlers.Result{}, err
	}
	if target == ctx.Actor {
		return handlers.Result{Msg: "Нельзя стрелять в себя.", MsgType: "ERROR"}, nil
	}

	ctx.Bus.Send(domain.CombatFire{Shooter: ctx.Actor, Target: target, Plate: p.Plate})
	return handlers.EmptyResult(), nil
}
