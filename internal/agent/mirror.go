package agent

import (
	"math"
	"slices"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// View - копия одной сущности у наблюдателя.
type View struct {
	ID      string
	Camp    string
	Role    string
	State   string
	Fields  map[string]any
	Effects []api.EffectView
}

// Number читает числовое поле. msgpack отдаёт целые в разных типах, поэтому приводим вручную.
func (v *View) Number(field string) (float64, bool) {
	return toFloat(v.Fields[field])
}

// Bool читает логическое поле.
func (v *View) Bool(field string) bool {
	b, _ := v.Fields[field].(bool)
	return b
}

// HasEffect - есть ли на копии эффект вида kind ("RUNE_ATTACK", ...).
func (v *View) HasEffect(kind string) bool {
	for _, e := range v.Effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Position - координаты робота (поля x, y).
func (v *View) Position() (domain.Vec2, bool) {
	x, okX := v.Number("x")
	y, okY := v.Number("y")
	return domain.Vec2{X: x, Y: y}, okX && okY
}

// Mirror - локальная копия матча, собранная из кадров репликации.
//
// SNAPSHOT заменяет всё, UPDATE меняет поля, CALL и LOG только запоминаются.
type Mirror struct {
	Match    string
	Me       string
	Tick     uint32
	Entities map[string]*View
	Calls    []api.ObserverCall
	Logs     []api.LogEntry
}

func NewMirror() *Mirror {
	return &Mirror{Entities: make(map[string]*View)}
}

// Apply применяет кадр. Возвращает false для кадра чужого матча.
func (m *Mirror) Apply(f api.Frame) bool {
	if m.Match != "" && f.Match != "" && f.Match != m.Match {
		return false
	}
	if f.Tick > m.Tick {
		m.Tick = f.Tick
	}

	switch f.Type {
	case api.FrameSnapshot:
		m.Match = f.Match
		if f.MyEntityID != "" {
			m.Me = f.MyEntityID
		}
		m.Entities = make(map[string]*View, len(f.Entities))
		for _, ev := range f.Entities {
			fields := make(map[string]any, len(ev.Fields))
			for k, val := range ev.Fields {
				fields[k] = val
			}
			m.Entities[ev.ID] = &View{
				ID:      ev.ID,
				Camp:    ev.Camp,
				Role:    ev.Role,
				State:   ev.State,
				Fields:  fields,
				Effects: slices.Clone(ev.Effects),
			}
		}
	case api.FrameUpdate:
		for _, ch := range f.Changes {
			v, ok := m.Entities[ch.Entity]
			if !ok {
				// Поле пришло раньше снимка: заводим пустую копию
				v = &View{ID: ch.Entity, Fields: make(map[string]any)}
				m.Entities[ch.Entity] = v
			}
			if ch.Field == api.FieldEffects {
				v.Effects = toEffects(ch.Value)
				continue
			}
			v.Fields[ch.Field] = ch.Value
		}
	case api.FrameCall:
		m.Calls = append(m.Calls, f.Calls...)
	case api.FrameLog:
		m.Logs = append(m.Logs, f.Logs...)
	}
	return true
}

// Self - копия робота этой сессии.
func (m *Mirror) Self() (*View, bool) {
	v, ok := m.Entities[m.Me]
	return v, ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return math.NaN(), false
}

// toEffects читает набор эффектов из UPDATE. Внутри процесса приходит []api.EffectView,
// после msgpack по сети - список словарей.
func toEffects(v any) []api.EffectView {
	switch list := v.(type) {
	case []api.EffectView:
		return slices.Clone(list)
	case []any:
		result := make([]api.EffectView, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ev := api.EffectView{}
			ev.Kind, _ = m["kind"].(string)
			ev.Source, _ = m["source"].(string)
			ev.Value, _ = toFloat(m["value"])
			ev.Remaining, _ = toFloat(m["remaining"])
			result = append(result, ev)
		}
		return result
	}
	return nil
}
