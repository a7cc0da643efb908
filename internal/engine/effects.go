package engine

import (
	"container/heap"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// EffectRegistry хранит эффекты одной сущности.
//
// Инварианты:
//   - не больше одного эффекта каждого вида;
//   - повторное добавление решается политикой вида (StackUnique / StackReplace);
//   - снятие отсутствующего эффекта - no-op;
//   - у каждого эффекта свой срок, истечение не трогает остальные.
//
// Реестр только хранит данные. Смысл эффектов интерпретируют те, кто их читает.
type EffectRegistry struct {
	queue   effectQueue
	itemMap map[domain.EffectKind]*effectItem
	order   []domain.EffectKind // Порядок добавления (для детерминированного перечисления)
	seq     uint64
}

func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{
		queue:   make(effectQueue, 0),
		itemMap: make(map[domain.EffectKind]*effectItem),
	}
}

// Add добавляет эффект. now - текущее время симуляции, от него считается Deadline.
//
// Возвращает true, если состояние реестра изменилось.
func (r *EffectRegistry) Add(e domain.Effect, now time.Duration) bool {
	if e.Kind == domain.EffectUnknown {
		return false
	}
	if e.Expires() {
		e.Deadline = now + e.Duration
	} else {
		e.Deadline = 0
	}

	if item, ok := r.itemMap[e.Kind]; ok {
		if e.Kind.Policy() == domain.StackUnique {
			return false
		}
		r.replace(item, e)
		return true
	}

	r.seq++
	item := &effectItem{Effect: e, Seq: r.seq, Index: -1}
	if e.Expires() {
		heap.Push(&r.queue, item)
	}
	r.itemMap[e.Kind] = item
	r.order = append(r.order, e.Kind)
	return true
}

// replace перезаписывает эффект на месте (последняя запись побеждает).
func (r *EffectRegistry) replace(item *effectItem, e domain.Effect) {
	wasQueued := item.Index >= 0
	deadline := e.Deadline
	item.Effect = e

	switch {
	case wasQueued && e.Expires():
		r.queue.update(item, deadline)
	case wasQueued && !e.Expires():
		heap.Remove(&r.queue, item.Index)
	case !wasQueued && e.Expires():
		heap.Push(&r.queue, item)
	}
}

// Remove снимает эффект. Для отсутствующего вида ничего не делает.
func (r *EffectRegistry) Remove(kind domain.EffectKind) bool {
	item, ok := r.itemMap[kind]
	if !ok {
		return false
	}
	if item.Index >= 0 {
		heap.Remove(&r.queue, item.Index)
	}
	delete(r.itemMap, kind)
	r.dropOrder(kind)
	return true
}

func (r *EffectRegistry) dropOrder(kind domain.EffectKind) {
	for i, k := range r.order {
		if k == kind {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Has проверяет наличие эффекта.
func (r *EffectRegistry) Has(kind domain.EffectKind) bool {
	_, ok := r.itemMap[kind]
	return ok
}

// Get возвращает эффект вида kind.
func (r *EffectRegistry) Get(kind domain.EffectKind) (domain.Effect, bool) {
	item, ok := r.itemMap[kind]
	if !ok {
		return domain.Effect{}, false
	}
	return item.Effect, true
}

// All возвращает копию эффектов в порядке добавления.
func (r *EffectRegistry) All() []domain.Effect {
	result := make([]domain.Effect, 0, len(r.order))
	for _, kind := range r.order {
		result = append(result, r.itemMap[kind].Effect)
	}
	return result
}

// Expire снимает все эффекты, чей срок наступил к моменту now.
func (r *EffectRegistry) Expire(now time.Duration) []domain.Effect {
	var expired []domain.Effect
	for {
		top := r.queue.peek()
		if top == nil || top.Effect.Deadline > now {
			break
		}
		heap.Pop(&r.queue)
		delete(r.itemMap, top.Effect.Kind)
		r.dropOrder(top.Effect.Kind)
		expired = append(expired, top.Effect)
	}
	return expired
}

// Clear снимает всё (уничтожение сущности).
func (r *EffectRegistry) Clear() []domain.Effect {
	all := r.All()
	r.queue = r.queue[:0]
	r.itemMap = make(map[domain.EffectKind]*effectItem)
	r.order = nil
	return all
}

func (r *EffectRegistry) Len() int {
	return len(r.itemMap)
}

// DebugDump возвращает снимок реестра для отладки
func (r *EffectRegistry) DebugDump() []map[string]interface{} {
	// Инициализируем как пустой слайс, а не nil. Тогда в JSON это будет "[]", а не "null"
	result := make([]map[string]interface{}, 0)

	for _, e := range r.All() {
		result = append(result, map[string]interface{}{
			"kind":     e.Kind.String(),
			"value":    e.Value,
			"source":   e.Source.String(),
			"deadline": e.Deadline.Seconds(),
			"expires":  e.Expires(),
		})
	}
	return result
}
