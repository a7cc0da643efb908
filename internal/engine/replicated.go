package engine

import (
	"fmt"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// Replicator - внешний канал репликации (сеть, тестовый рекордер).
type Replicator interface {
	// Push отправляет наблюдателям изменённые поля сущности.
	Push(entity types.Identity, changes []domain.FieldChange)
	// Call - односторонний вызов метода на копиях сущности у наблюдателей.
	Call(entity types.Identity, method string, args ...any)
}

// NopReplicator ничего не отправляет (реплеи, бенчмарки).
type NopReplicator struct{}

func (NopReplicator) Push(types.Identity, []domain.FieldChange) {}
func (NopReplicator) Call(types.Identity, string, ...any)       {}

type replicatedField interface {
	fieldName() string
	isDirty() bool
	current() any
	clean()
}

// Replicated - поле, которое пишет только авторитетная сторона.
// Запись помечает поле грязным; в конце тика Store.Flush отдаёт изменения репликатору.
type Replicated[T comparable] struct {
	name  string
	value T
	dirty bool
}

// NewReplicated создаёт поле и регистрирует его в Store. Новое поле сразу грязное,
// чтобы наблюдатели получили начальное значение.
func NewReplicated[T comparable](store *Store, name string, initial T) *Replicated[T] {
	f := &Replicated[T]{name: name, value: initial, dirty: true}
	store.fields = append(store.fields, f)
	return f
}

func (f *Replicated[T]) Get() T {
	return f.value
}

// Set меняет значение. Вызов вне авторитетного контекста - нарушение инварианта.
func (f *Replicated[T]) Set(ctx *Sim, v T) {
	if !ctx.IsAuthority() {
		panic(fmt.Errorf("%w: field %q", ErrAuthorityViolation, f.name))
	}
	if f.value == v {
		return
	}
	f.value = v
	f.dirty = true
}

func (f *Replicated[T]) Dirty() bool {
	return f.dirty
}

func (f *Replicated[T]) fieldName() string { return f.name }
func (f *Replicated[T]) isDirty() bool     { return f.dirty }
func (f *Replicated[T]) current() any      { return f.value }
func (f *Replicated[T]) clean()            { f.dirty = false }

// RecordingReplicator запоминает всё, что ему отправили (тесты, отладка).
type RecordingReplicator struct {
	Pushes []RecordedPush
	Calls  []RecordedCall
}

type RecordedPush struct {
	Entity  types.Identity
	Changes []domain.FieldChange
}

type RecordedCall struct {
	Entity types.Identity
	Method string
	Args   []any
}

func (r *RecordingReplicator) Push(entity types.Identity, changes []domain.FieldChange) {
	r.Pushes = append(r.Pushes, RecordedPush{Entity: entity, Changes: changes})
}

func (r *RecordingReplicator) Call(entity types.Identity, method string, args ...any) {
	r.Calls = append(r.Calls, RecordedCall{Entity: entity, Method: method, Args: args})
}

// Latest возвращает последнее отправленное значение поля сущности.
func (r *RecordingReplicator) Latest(entity types.Identity, field string) (any, bool) {
	for i := len(r.Pushes) - 1; i >= 0; i-- {
		p := r.Pushes[i]
		if p.Entity != entity {
			continue
		}
		for j := len(p.Changes) - 1; j >= 0; j-- {
			if p.Changes[j].Field == field {
				return p.Changes[j].Value, true
			}
		}
	}
	return nil, false
}

// Reset очищает запись.
func (r *RecordingReplicator) Reset() {
	r.Pushes = nil
	r.Calls = nil
}
