package engine

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
)

type sensorEventKind uint8

const (
	sensorEnter sensorEventKind = iota
	sensorExit
)

type sensorEvent struct {
	kind sensorEventKind
	id   types.Identity
}

// Sensor - триггерный объём, который наполняет физический слой.
//
// Физика может сообщать сырые контакты (NotifyEnter/NotifyExit) и/или
// выборку текущих пересечений (Sample). Оба источника разбирает SensorUtility.
type Sensor struct {
	Name   string
	Filter func(types.Identity) bool // nil - пропускать всех

	events  []sensorEvent
	sample  []types.Identity
	sampled bool
}

func NewSensor(name string, filter func(types.Identity) bool) *Sensor {
	return &Sensor{Name: name, Filter: filter}
}

func (s *Sensor) accepts(id types.Identity) bool {
	return !id.IsNil() && (s.Filter == nil || s.Filter(id))
}

// NotifyEnter ставит в очередь сырой контакт "вошёл".
func (s *Sensor) NotifyEnter(id types.Identity) {
	if s.accepts(id) {
		s.events = append(s.events, sensorEvent{kind: sensorEnter, id: id})
	}
}

// NotifyExit ставит в очередь сырой контакт "вышел".
func (s *Sensor) NotifyExit(id types.Identity) {
	if s.accepts(id) {
		s.events = append(s.events, sensorEvent{kind: sensorExit, id: id})
	}
}

// Sample сохраняет полный набор пересечений на текущий тик.
func (s *Sensor) Sample(ids []types.Identity) {
	s.sample = s.sample[:0]
	for _, id := range ids {
		if s.accepts(id) {
			s.sample = append(s.sample, id)
		}
	}
	s.sampled = true
}

// EdgeFunc - обработчик фронта. Вызывается из Poll в тике владельца датчика.
type EdgeFunc func(ctx *Sim, id types.Identity)

// SensorUtility превращает выборки датчика в фронты enter/exit.
//
// Для каждого id разность числа enter и exit всегда 0 или 1.
type SensorUtility struct {
	sensor  *Sensor
	onEnter EdgeFunc
	onExit  EdgeFunc

	tracked map[types.Identity]struct{}
	order   []types.Identity
}

// NewSensorUtility связывает датчик с колбэками. Датчик обязателен.
func NewSensorUtility(sensor *Sensor, onEnter, onExit EdgeFunc) (*SensorUtility, error) {
	if sensor == nil {
		return nil, ErrMissingSensor
	}
	if onEnter == nil {
		onEnter = func(*Sim, types.Identity) {}
	}
	if onExit == nil {
		onExit = func(*Sim, types.Identity) {}
	}
	return &SensorUtility{
		sensor:  sensor,
		onEnter: onEnter,
		onExit:  onExit,
		tracked: make(map[types.Identity]struct{}),
	}, nil
}

func (u *SensorUtility) Sensor() *Sensor {
	return u.sensor
}

// Poll вызывается раз в тик владельцем датчика.
func (u *SensorUtility) Poll(ctx *Sim) {
	s := u.sensor

	// 1. Сырые контакты в порядке поступления. Мгновенный вход+выход даёт enter, затем exit.
	events := s.events
	s.events = nil
	for _, ev := range events {
		switch ev.kind {
		case sensorEnter:
			u.enter(ctx, ev.id)
		case sensorExit:
			u.exit(ctx, ev.id)
		}
	}

	// 2. Сверка с выборкой. Сначала все выходы, потом входы в порядке выборки.
	if !s.sampled {
		return
	}
	s.sampled = false

	present := make(map[types.Identity]struct{}, len(s.sample))
	for _, id := range s.sample {
		present[id] = struct{}{}
	}
	for _, id := range u.Tracked() {
		if _, ok := present[id]; !ok {
			u.exit(ctx, id)
		}
	}
	for _, id := range s.sample {
		u.enter(ctx, id)
	}
}

func (u *SensorUtility) enter(ctx *Sim, id types.Identity) {
	if _, ok := u.tracked[id]; ok {
		return
	}
	u.tracked[id] = struct{}{}
	u.order = append(u.order, id)
	u.onEnter(ctx, id)
}

func (u *SensorUtility) exit(ctx *Sim, id types.Identity) {
	if _, ok := u.tracked[id]; !ok {
		return
	}
	delete(u.tracked, id)
	for i, v := range u.order {
		if v == id {
			u.order = append(u.order[:i], u.order[i+1:]...)
			break
		}
	}
	u.onExit(ctx, id)
}

// Tracked возвращает копию отслеживаемых id в порядке входа.
func (u *SensorUtility) Tracked() []types.Identity {
	result := make([]types.Identity, len(u.order))
	copy(result, u.order)
	return result
}

func (u *SensorUtility) IsTracked(id types.Identity) bool {
	_, ok := u.tracked[id]
	return ok
}

// Forget выпускает id без события в физике (цель уничтожена). Колбэк exit вызывается.
func (u *SensorUtility) Forget(ctx *Sim, id types.Identity) {
	u.exit(ctx, id)
}

// Reset отпускает всех (уничтожение владельца датчика).
func (u *SensorUtility) Reset(ctx *Sim) {
	for _, id := range u.Tracked() {
		u.exit(ctx, id)
	}
	u.sensor.events = nil
	u.sensor.sampled = false
}
