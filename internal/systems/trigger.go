package systems

import (
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// Body - тело, которое видят триггеры (робот).
type Body interface {
	Identity() types.Identity
	Position() domain.Vec2
	Alive() bool
}

type volume struct {
	sensor *engine.Sensor
	shape  domain.Shape
}

// TriggerWorld - минимальный источник триггеров: каждый тик выбирает тела
// внутри каждого объёма и отдаёт выборку датчику.
//
// Настоящий физический движок может заменить его, вызывая Sensor.NotifyEnter/NotifyExit.
type TriggerWorld struct {
	volumes []volume
	bodies  []Body
}

func NewTriggerWorld() *TriggerWorld {
	return &TriggerWorld{}
}

// AddVolume привязывает датчик к объёму на поле.
func (w *TriggerWorld) AddVolume(sensor *engine.Sensor, shape domain.Shape) {
	w.volumes = append(w.volumes, volume{sensor: sensor, shape: shape})
}

// AddBody регистрирует тело. Повторная регистрация того же Identity заменяет тело.
func (w *TriggerWorld) AddBody(b Body) {
	for i, other := range w.bodies {
		if other.Identity() == b.Identity() {
			w.bodies[i] = b
			return
		}
	}
	w.bodies = append(w.bodies, b)
}

// RemoveBody убирает тело. На следующей выборке датчики увидят выход.
func (w *TriggerWorld) RemoveBody(id types.Identity) {
	for i, b := range w.bodies {
		if b.Identity() == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// EntityDespawned реализует engine.DespawnListener.
func (w *TriggerWorld) EntityDespawned(_ *engine.Sim, id types.Identity) {
	w.RemoveBody(id)
}

// Overlapping возвращает живые тела внутри формы в порядке регистрации.
func (w *TriggerWorld) Overlapping(shape domain.Shape) []types.Identity {
	var ids []types.Identity
	for _, b := range w.bodies {
		if b.Alive() && shape.Contains(b.Position()) {
			ids = append(ids, b.Identity())
		}
	}
	return ids
}

// Update реализует engine.System.
func (w *TriggerWorld) Update(_ *engine.Sim, _ time.Duration) {
	for _, v := range w.volumes {
		v.sensor.Sample(w.Overlapping(v.shape))
	}
}
