package actions

import (
	"fmt"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// HandleRuneStart запускает активацию руны за сторону робота.
func HandleRuneStart(ctx handlers.Context, p api.RunePayload) (handlers.Result, error) {
	if err := ctx.RequireActor(); err != nil {
		return handlers.Result{}, err
	}
	runeID, err := resolveRune(ctx, p.RuneID)
	if err != nil {
		return handlers.Result{}, err
	}

	ctx.Bus.Send(domain.RuneStart{Rune: runeID, Camp: ctx.Actor.Camp})
	return handlers.EmptyResult(), nil
}

// HandleRuneHit - попадание в ветвь руны.
func HandleRuneHit(ctx handlers.Context, p api.RuneHitPayload) (handlers.Result, error) {
	if err := ctx.RequireActor(); err != nil {
		return handlers.Result{}, err
	}
	runeID, err := resolveRune(ctx, p.RuneID)
	if err != nil {
		return handlers.Result{}, err
	}

	ctx.Bus.Send(domain.RuneHit{Rune: runeID, Camp: ctx.Actor.Camp, Branch: p.Branch})
	return handlers.EmptyResult(), nil
}

func resolveRune(ctx handlers.Context, raw string) (types.Identity, error) {
	id, err := ctx.ResolveTarget(raw)
	if err != nil {
		return types.NilIdentity, err
	}
	if id.Role != enums.RolePowerRune {
		return types.NilIdentity, fmt.Errorf("%s is not a power rune", id)
	}
	return id, nil
}
