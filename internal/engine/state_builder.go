package engine

import (
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// BuildSnapshot создает полный "снимок" матча для наблюдателя.
//
// Снимок - первый кадр новой сессии; дальше наблюдатель живёт на UPDATE-кадрах.
// token - робот, которым управляет сессия (NilIdentity у зрителя).
func (i *Instance) BuildSnapshot(token types.Identity) api.Frame {
	views := make([]api.EntityView, 0, i.Sim.Entities.Len())
	for e := range i.Sim.Entities.All() {
		views = append(views, toEntityView(i.Sim, e))
	}

	frame := api.Frame{
		Type:     api.FrameSnapshot,
		Match:    i.ID,
		Tick:     i.Sim.Tick(),
		Entities: views,
	}
	if !token.IsNil() {
		frame.MyEntityID = token.String()
	}
	return frame
}

// toEntityView конвертирует сущность в DTO для отправки клиенту.
func toEntityView(sim *Sim, e Entity) api.EntityView {
	id := e.Identity()
	base := e.Base()

	view := api.EntityView{
		ID:     id.String(),
		Camp:   id.Camp.String(),
		Role:   id.Role.String(),
		State:  base.State().String(),
		Fields: base.Snapshot(),
	}

	if base.Effects().Len() > 0 {
		view.Effects = effectViews(sim, base)
	}

	return view
}

// effectViews - текущие эффекты сущности в порядке добавления.
// Пустой набор - пустой срез, а не nil: наблюдатель должен увидеть снятие последнего эффекта.
func effectViews(sim *Sim, base *Store) []api.EffectView {
	all := base.Effects().All()
	result := make([]api.EffectView, 0, len(all))
	for _, eff := range all {
		ev := api.EffectView{
			Kind:  eff.Kind.String(),
			Value: eff.Value,
		}
		if !eff.Source.IsNil() {
			ev.Source = eff.Source.String()
		}
		// Оставшееся время считаем от часов симуляции
		if eff.Expires() {
			ev.Remaining = max(0, (eff.Deadline - sim.Now()).Seconds())
		}
		result = append(result, ev)
	}
	return result
}
