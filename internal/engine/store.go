package engine

import (
	"fmt"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// Receiver - всё, что может получать действия шины.
type Receiver interface {
	Identity() types.Identity
	InputActions() []domain.ActionName
	Receive(ctx *Sim, a domain.Action)
}

// Entity - сущность симуляции. Реализуется встраиванием *Store или Store.
//
// Типы-наследники расширяют InputActions через UnionActions и в default-ветке
// своего Receive передают действие родителю.
type Entity interface {
	Receiver
	Init(ctx *Sim) error
	Tick(ctx *Sim, dt time.Duration)
	Base() *Store
}

// Despawner - опциональный хук уничтожения (сброс датчиков и т.п.).
type Despawner interface {
	OnDespawn(ctx *Sim)
}

// Store - общая база всех сущностей: идентичность, жизненный цикл, эффекты и реплицируемые поля.
type Store struct {
	id      types.Identity
	state   Lifecycle
	effects *EffectRegistry
	fields  []replicatedField
	synced  bool

	effectsDirty bool // Набор эффектов менялся с последней отправки
}

// NewStore создаёт Store сразу с идентичностью (состояние Identified).
func NewStore(id types.Identity) Store {
	s := Store{effects: NewEffectRegistry()}
	if err := s.Identify(id); err != nil {
		panic(err)
	}
	return s
}

// Identify назначает идентичность. Повторное назначение другого значения запрещено.
func (s *Store) Identify(id types.Identity) error {
	if id.IsNil() {
		return ErrNilIdentity
	}
	if s.state != StateUninitialized {
		if s.id == id {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrIdentityMutation, s.id, id)
	}
	if s.effects == nil {
		s.effects = NewEffectRegistry()
	}
	s.id = id
	s.state = StateIdentified
	return nil
}

func (s *Store) Identity() types.Identity { return s.id }
func (s *Store) Base() *Store             { return s }
func (s *Store) State() Lifecycle         { return s.state }

// Synced - получены ли авторитетные значения полей. На сервере всегда true после регистрации.
func (s *Store) Synced() bool { return s.synced }

// MarkSynced вызывается репликой наблюдателя после применения первого кадра.
func (s *Store) MarkSynced() { s.synced = true }

// InputActions базового уровня: эффекты, адресованные этой сущности.
func (s *Store) InputActions() []domain.ActionName {
	return []domain.ActionName{domain.NameBuffGrant, domain.NameBuffRevoke}
}

// Receive базового уровня.
func (s *Store) Receive(ctx *Sim, a domain.Action) {
	if !ctx.IsAuthority() {
		return
	}

	switch act := a.(type) {
	case domain.BuffGrant:
		if act.Receiver == s.id {
			s.AddEffect(ctx, act.Effect)
		}
	case domain.BuffRevoke:
		if act.Receiver == s.id {
			s.RemoveEffect(ctx, act.Kind)
		}
	}
}

// Mutate выполняет fn только в авторитетном контексте. Возвращает, был ли вызов.
func (s *Store) Mutate(ctx *Sim, fn func()) bool {
	if !ctx.IsAuthority() {
		return false
	}
	fn()
	return true
}

func (s *Store) Init(*Sim) error          { return nil }
func (s *Store) Tick(*Sim, time.Duration) {}

// --- ЭФФЕКТЫ ---

// AddEffect кладёт эффект в реестр. Повторное добавление решается политикой вида.
func (s *Store) AddEffect(ctx *Sim, e domain.Effect) bool {
	if !ctx.IsAuthority() {
		panic(fmt.Errorf("%w: add effect %s on %s", ErrAuthorityViolation, e.Kind, s.id))
	}
	if !s.effects.Add(e, ctx.Now()) {
		return false
	}
	s.effectsDirty = true
	return true
}

// RemoveEffect снимает эффект. Снятие отсутствующего - no-op.
func (s *Store) RemoveEffect(ctx *Sim, kind domain.EffectKind) bool {
	if !ctx.IsAuthority() {
		panic(fmt.Errorf("%w: remove effect %s on %s", ErrAuthorityViolation, kind, s.id))
	}
	if !s.effects.Remove(kind) {
		return false
	}
	s.effectsDirty = true
	return true
}

// expireEffects снимает истёкшие эффекты (фаза тика, только на сервере).
func (s *Store) expireEffects(now time.Duration) {
	if len(s.effects.Expire(now)) > 0 {
		s.effectsDirty = true
	}
}

// EffectsDirty - набор эффектов менялся и ещё не отправлен наблюдателям.
func (s *Store) EffectsDirty() bool {
	return s.effectsDirty
}

func (s *Store) HasEffect(kind domain.EffectKind) bool {
	return s.effects.Has(kind)
}

func (s *Store) Effect(kind domain.EffectKind) (domain.Effect, bool) {
	return s.effects.Get(kind)
}

func (s *Store) Effects() *EffectRegistry {
	return s.effects
}

// --- РЕПЛИКАЦИЯ ---

// Flush собирает грязные поля и сбрасывает флаги.
func (s *Store) Flush() []domain.FieldChange {
	var changes []domain.FieldChange
	for _, f := range s.fields {
		if !f.isDirty() {
			continue
		}
		changes = append(changes, domain.FieldChange{Field: f.fieldName(), Value: f.current()})
		f.clean()
	}
	return changes
}

// Snapshot возвращает все поля (первый кадр для нового наблюдателя).
func (s *Store) Snapshot() map[string]any {
	result := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		result[f.fieldName()] = f.current()
	}
	return result
}

// CallObservers - односторонний вызов метода на копиях у наблюдателей. Только с сервера.
func (s *Store) CallObservers(ctx *Sim, method string, args ...any) {
	if !ctx.IsAuthority() {
		return
	}
	ctx.replicator.Call(s.id, method, args...)
}

// UnionActions объединяет набор родителя с собственными действиями (без дублей, порядок сохраняется).
func UnionActions(parent []domain.ActionName, own ...domain.ActionName) []domain.ActionName {
	seen := make(map[domain.ActionName]struct{}, len(parent)+len(own))
	result := make([]domain.ActionName, 0, len(parent)+len(own))
	for _, list := range [][]domain.ActionName{parent, own} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}
