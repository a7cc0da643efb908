package entities

import (
	"fmt"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine"
)

// Lights - набор дочерних светильников сущности (плиты брони, ветви руны).
//
// Индекс светильника - это селектор Child в SendChild. domain.AllChildren адресует все сразу.
type Lights struct {
	prefix string
	lights []*engine.Replicated[domain.LightColor]
}

// NewLights регистрирует n реплицируемых полей "<prefix>.<i>" в store.
func NewLights(store *engine.Store, prefix string, n int, initial domain.LightColor) *Lights {
	l := &Lights{prefix: prefix, lights: make([]*engine.Replicated[domain.LightColor], n)}
	for i := range l.lights {
		l.lights[i] = engine.NewReplicated(store, fmt.Sprintf("%s.%d", prefix, i), initial)
	}
	return l
}

func (l *Lights) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lights)
}

// Has - есть ли светильник с индексом child. AllChildren есть всегда, если набор не пуст.
func (l *Lights) Has(child int) bool {
	if child == domain.AllChildren {
		return l.Len() > 0
	}
	return child >= 0 && child < l.Len()
}

func (l *Lights) Color(child int) domain.LightColor {
	if child < 0 || child >= l.Len() {
		return domain.LightOff
	}
	return l.lights[child].Get()
}

// Apply применяет Light.Set к одному светильнику или ко всем.
func (l *Lights) Apply(ctx *engine.Sim, child int, color domain.LightColor) bool {
	if !l.Has(child) {
		return false
	}
	if child == domain.AllChildren {
		for _, light := range l.lights {
			light.Set(ctx, color)
		}
		return true
	}
	l.lights[child].Set(ctx, color)
	return true
}
