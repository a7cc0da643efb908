package engine

import (
	"fmt"
	"iter"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
)

// EntityManager - реестр живых сущностей матча: Identity -> Entity.
//
// Порядок регистрации сохраняется: в нём же сущности тикают и перечисляются.
type EntityManager struct {
	byID  map[types.Identity]Entity
	order []Entity
}

func NewEntityManager() *EntityManager {
	return &EntityManager{
		byID: make(map[types.Identity]Entity),
	}
}

// Register добавляет сущность. Повторная регистрация того же Identity - ошибка.
func (m *EntityManager) Register(e Entity) error {
	id := e.Identity()
	if id.IsNil() {
		return ErrNilIdentity
	}
	if _, ok := m.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, id)
	}
	m.byID[id] = e
	m.order = append(m.order, e)
	return nil
}

// Unregister удаляет сущность. Для отсутствующей возвращает false.
func (m *EntityManager) Unregister(id types.Identity) bool {
	e, ok := m.byID[id]
	if !ok {
		return false
	}
	delete(m.byID, id)

	// Новый слайс: снимки, которые сейчас перебираются, не должны меняться
	next := make([]Entity, 0, len(m.order))
	for _, other := range m.order {
		if other != e {
			next = append(next, other)
		}
	}
	m.order = next
	return true
}

// Ref ищет сущность. Отсутствие - это обычный результат (nil, false), а не ошибка.
func (m *EntityManager) Ref(id types.Identity) (Entity, bool) {
	e, ok := m.byID[id]
	return e, ok
}

// RefAs ищет сущность и приводит её к конкретному типу.
func RefAs[T any](m *EntityManager, id types.Identity) (T, bool) {
	var zero T
	e, ok := m.byID[id]
	if !ok {
		return zero, false
	}
	t, ok := e.(T)
	return t, ok
}

// Contains - зарегистрирована ли сущность.
func (m *EntityManager) Contains(id types.Identity) bool {
	_, ok := m.byID[id]
	return ok
}

func (m *EntityManager) Len() int {
	return len(m.order)
}

// Select возвращает ленивую последовательность сущностей, удовлетворяющих pred.
//
// Набор фиксируется в момент вызова Select: регистрации и удаления после этого
// не видны. Последовательность можно перебирать повторно.
func (m *EntityManager) Select(pred func(Entity) bool) iter.Seq[Entity] {
	snapshot := m.order
	return func(yield func(Entity) bool) {
		for _, e := range snapshot {
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// All - все сущности.
func (m *EntityManager) All() iter.Seq[Entity] {
	return m.Select(nil)
}

// RobotRef - все роботы обеих сторон.
func (m *EntityManager) RobotRef() iter.Seq[Entity] {
	return m.Select(func(e Entity) bool {
		return e.Identity().Role.IsRobot()
	})
}

// ByCamp - сущности стороны c.
func (m *EntityManager) ByCamp(c enums.Camp) iter.Seq[Entity] {
	return m.Select(func(e Entity) bool {
		return e.Identity().Camp == c
	})
}

// ByRole - сущности роли r.
func (m *EntityManager) ByRole(r enums.Role) iter.Seq[Entity] {
	return m.Select(func(e Entity) bool {
		return e.Identity().Role == r
	})
}

// Identities - снимок всех Identity в порядке регистрации.
func (m *EntityManager) Identities() []types.Identity {
	result := make([]types.Identity, 0, len(m.order))
	for _, e := range m.order {
		result = append(result, e.Identity())
	}
	return result
}
