package admin

import (
	"fmt"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// HandleGrant выдаёт эффект любой сущности. Политика наложения та же, что у игровых источников.
func HandleGrant(ctx handlers.Context, p api.GrantPayload) (handlers.Result, error) {
	target, err := ctx.ResolveTarget(p.TargetID)
	if err != nil {
		return handlers.Result{}, err
	}
	kind := domain.ParseEffectKind(p.Kind)
	if kind == domain.EffectUnknown {
		return handlers.Result{Msg: fmt.Sprintf("Unknown effect %q", p.Kind), MsgType: "ERROR"}, nil
	}

	ctx.Bus.Send(domain.BuffGrant{
		Receiver: target,
		Effect: domain.Effect{
			Kind:     kind,
			Value:    p.Value,
			Source:   ctx.Actor,
			Duration: time.Duration(p.Seconds * float64(time.Second)),
		},
	})
	return handlers.Result{Msg: fmt.Sprintf("⚡ %s granted to %s", kind, target), MsgType: "INFO"}, nil
}

func HandleRevoke(ctx handlers.Context, p api.RevokePayload) (handlers.Result, error) {
	target, err := ctx.ResolveTarget(p.TargetID)
	if err != nil {
		return handlers.Result{}, err
	}
	kind := domain.ParseEffectKind(p.Kind)
	if kind == domain.EffectUnknown {
		return handlers.Result{Msg: fmt.Sprintf("Unknown effect %q", p.Kind), MsgType: "ERROR"}, nil
	}

	ctx.Bus.Send(domain.BuffRevoke{Receiver: target, Kind: kind})
	return handlers.Result{Msg: fmt.Sprintf("%s revoked from %s", kind, target), MsgType: "INFO"}, nil
}

// HandleKill уничтожает робота или строение без урона.
func HandleKill(ctx handlers.Context, p api.EntityPayload) (handlers.Result, error) {
	target, err := ctx.ResolveTarget(p.TargetID)
	if err != nil {
		return handlers.Result{}, err
	}

	ctx.Bus.Send(domain.CombatKill{Victim: target, Killer: ctx.Actor})
	return handlers.Result{Msg: fmt.Sprintf("💀 Smited %s", target), MsgType: "COMBAT"}, nil
}

func HandleRevive(ctx handlers.Context, p api.EntityPayload) (handlers.Result, error) {
	target, err := ctx.ResolveTarget(p.TargetID)
	if err != nil {
		return handlers.Result{}, err
	}
	if !target.Role.IsRobot() {
		return handlers.Result{Msg: "Only robots can be revived", MsgType: "ERROR"}, nil
	}

	ctx.Bus.Send(domain.RobotRevive{Receiver: target})
	return handlers.Result{Msg: fmt.Sprintf("❤️ Revived %s", target), MsgType: "INFO"}, nil
}
