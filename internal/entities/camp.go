package entities

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// campRobots - снимок Identity роботов стороны в порядке регистрации.
func campRobots(ctx *engine.Sim, camp enums.Camp) []types.Identity {
	var ids []types.Identity
	for e := range ctx.Entities.ByCamp(camp) {
		if e.Identity().Role.IsRobot() {
			ids = append(ids, e.Identity())
		}
	}
	return ids
}

// grantCamp выдаёт эффект каждому роботу стороны через шину.
func grantCamp(ctx *engine.Sim, camp enums.Camp, effect domain.Effect) {
	for _, id := range campRobots(ctx, camp) {
		ctx.Send(domain.BuffGrant{Receiver: id, Effect: effect})
	}
}

func revokeCamp(ctx *engine.Sim, camp enums.Camp, kind domain.EffectKind) {
	for _, id := range campRobots(ctx, camp) {
		ctx.Send(domain.BuffRevoke{Receiver: id, Kind: kind})
	}
}

// robotsOnly - фильтр датчиков: только роботы играющих сторон.
func robotsOnly(id types.Identity) bool {
	return id.Role.IsRobot() && id.Camp.IsPlayable()
}

// robotsOf - фильтр датчиков по стороне. Нейтральная сторона пропускает всех роботов.
func robotsOf(camp enums.Camp) func(types.Identity) bool {
	if !camp.IsPlayable() {
		return robotsOnly
	}
	return func(id types.Identity) bool {
		return robotsOnly(id) && id.Camp == camp
	}
}
