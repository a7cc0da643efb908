package actions

import (
	"fmt"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
)

// HandleInit подтверждает подключение. Снимок матча отправляет сам инстанс.
func HandleInit(ctx handlers.Context) (handlers.Result, error) {
	if ctx.Actor.IsNil() {
		return handlers.Result{Msg: "Observer connected.", MsgType: "INFO"}, nil
	}
	if err := ctx.RequireActor(); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("Operator connected to %s.", ctx.Actor),
		MsgType: "INFO",
	}, nil
}
