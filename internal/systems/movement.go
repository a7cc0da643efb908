package systems

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// MovementResult - результат вычисления движения
type MovementResult struct {
	Pos       domain.Vec2
	HasMoved  bool
	Arrived   bool
	BlockedBy int // Индекс препятствия, -1 если путь свободен
}

// CalculateMove вычисляет новую позицию за dt. Не меняет состояние мира!
//
// field - прямоугольник поля, obstacles - непроходимые формы.
func CalculateMove(pos, target domain.Vec2, speed, dt float64, field domain.Shape, obstacles []domain.Shape) MovementResult {
	res := MovementResult{Pos: pos, BlockedBy: -1}

	delta := target.Sub(pos)
	dist := delta.Len()
	if dist < 1e-6 {
		res.Arrived = true
		return res
	}

	// 1. Шаг к цели без перелёта
	step := speed * dt
	next := target
	if step < dist {
		next = pos.Add(delta.Scale(step / dist))
	}

	// 2. Проверка границ
	if !field.Contains(next) {
		return res
	}

	// 3. Проверка препятствий
	for i, o := range obstacles {
		if o.Contains(next) {
			res.BlockedBy = i
			return res
		}
	}

	res.Pos = next
	res.HasMoved = true
	res.Arrived = next == target
	return res
}
