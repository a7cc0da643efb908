package systems

import (
	"sort"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// Target - сущность, по которой можно стрелять.
type Target interface {
	engine.Entity
	Position() domain.Vec2
	Alive() bool
}

// TargetQuery - параметры выбора целей.
type TargetQuery struct {
	From      types.Identity
	Pos       domain.Vec2
	Range     float64
	Obstacles []domain.Shape // nil - без проверки видимости
}

// SelectTargets возвращает живые вражеские цели в радиусе, ближайшие первыми.
//
// Сущности без синхронизированного состояния (Synced() == false) не выбираются:
// их поля ещё не заполнены авторитетной стороной.
func SelectTargets(ctx *engine.Sim, q TargetQuery) []Target {
	type candidate struct {
		target Target
		dist   float64
	}
	var found []candidate

	for e := range ctx.Entities.All() {
		t, ok := e.(Target)
		if !ok {
			continue
		}
		id := t.Identity()

		// 1. Свои и нейтральные
		if id == q.From || id.Camp == q.From.Camp || !id.Camp.IsPlayable() {
			continue
		}

		// 2. Состояние
		if !t.Base().Synced() || !t.Base().State().IsLive() || !t.Alive() {
			continue
		}

		// 3. Дистанция и видимость
		dist := q.Pos.DistanceTo(t.Position())
		if dist > q.Range {
			continue
		}
		if q.Obstacles != nil && !HasLineOfSight(q.Obstacles, q.Pos, t.Position()) {
			continue
		}
		found = append(found, candidate{target: t, dist: dist})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].dist < found[j].dist })

	result := make([]Target, 0, len(found))
	for _, c := range found {
		result = append(result, c.target)
	}
	return result
}
