package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

// System - глобальная подсистема, которая работает до Tick сущностей (физика, триггеры).
type System interface {
	Update(ctx *Sim, dt time.Duration)
}

// DespawnListener - подсистема, которой нужно знать об уничтожении сущностей
// (источник триггеров убирает тело, чтобы датчики увидели выход).
type DespawnListener interface {
	EntityDespawned(ctx *Sim, id types.Identity)
}

// SimOptions - параметры контекста симуляции.
type SimOptions struct {
	Authority     bool // true на сервере, false у наблюдателя
	Seed          int64
	Rules         domain.Rules
	MaxDepth      int
	IsolateFaults bool
	Replicator    Replicator
	Log           *logrus.Entry
}

// Sim - явный контекст симуляции одного матча.
//
// Передаётся в Init, Receive и Tick вместо глобальных синглтонов.
// Все вызовы происходят в одной горутине цикла матча.
type Sim struct {
	Dispatcher *Dispatcher
	Entities   *EntityManager
	Rules      domain.Rules
	Rng        *rand.Rand

	authority  bool
	tick       uint32
	now        time.Duration
	replicator Replicator
	systems    []System
	metrics    *kernelMetrics
	log        *logrus.Entry
}

func NewSim(opts SimOptions) *Sim {
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logger.Log)
	}
	if opts.Replicator == nil {
		opts.Replicator = NopReplicator{}
	}
	if opts.Rules.RuneBranches == 0 {
		opts.Rules = domain.DefaultRules()
	}

	metrics := newKernelMetrics()
	return &Sim{
		Dispatcher: NewDispatcher(DispatcherOptions{
			MaxDepth:      opts.MaxDepth,
			IsolateFaults: opts.IsolateFaults,
		}, opts.Log, metrics),
		Entities:   NewEntityManager(),
		Rules:      opts.Rules,
		Rng:        rand.New(rand.NewSource(opts.Seed)),
		authority:  opts.Authority,
		replicator: opts.Replicator,
		metrics:    metrics,
		log:        opts.Log,
	}
}

func (s *Sim) IsAuthority() bool      { return s.authority }
func (s *Sim) Tick() uint32           { return s.tick }
func (s *Sim) Now() time.Duration     { return s.now }
func (s *Sim) Log() *logrus.Entry     { return s.log }
func (s *Sim) Replicator() Replicator { return s.replicator }

// SetReplicator меняет канал репликации (подключение сети после сборки матча).
func (s *Sim) SetReplicator(r Replicator) {
	if r == nil {
		r = NopReplicator{}
	}
	s.replicator = r
}

// AddSystem регистрирует подсистему, работающую перед Tick сущностей.
func (s *Sim) AddSystem(sys System) {
	s.systems = append(s.systems, sys)
}

// Send публикует действие на шину.
func (s *Sim) Send(a domain.Action) {
	s.Dispatcher.Send(s, a)
}

// SendChild публикует действие для дочернего элемента.
func (s *Sim) SendChild(a domain.Action, parent types.Identity, child int) {
	s.Dispatcher.SendChild(s, a, parent, child)
}

// --- ЖИЗНЕННЫЙ ЦИКЛ ---

// Spawn проводит сущность через Init, регистрацию и подписку.
//
// Ошибки конфигурации из Init и повторная регистрация Identity возвращаются вызывающему:
// при сборке матча это фатально.
func (s *Sim) Spawn(e Entity) error {
	base := e.Base()
	if base.state != StateIdentified {
		return fmt.Errorf("spawn %s: %w (state %s)", base.id, ErrNotIdentified, base.state)
	}
	if !base.id.Packable() {
		return fmt.Errorf("spawn %s: %w", base.id, ErrIdentityRange)
	}

	// 1. Init: здесь сущность проверяет свою конфигурацию (датчики, дочерние элементы)
	if err := e.Init(s); err != nil {
		return fmt.Errorf("init %s: %w", base.id, err)
	}

	// 2. Реестр
	if err := s.Entities.Register(e); err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	base.state = StateRegistered

	// 3. Подписка на шину
	if err := s.Dispatcher.Subscribe(e); err != nil {
		s.Entities.Unregister(base.id)
		base.state = StateIdentified
		return fmt.Errorf("spawn: %w", err)
	}
	base.state = StateActive
	if s.authority {
		base.synced = true
	}

	s.log.WithFields(logrus.Fields{
		"entity":  base.id.String(),
		"actions": len(e.InputActions()),
	}).Debug("Entity spawned")
	return nil
}

// Despawn уничтожает сущность. Безопасно вызывать из Receive.
func (s *Sim) Despawn(id types.Identity) bool {
	e, ok := s.Entities.Ref(id)
	if !ok {
		return false
	}
	if d, ok := e.(Despawner); ok {
		d.OnDespawn(s)
	}

	s.Dispatcher.Unsubscribe(id)
	s.Entities.Unregister(id)
	for _, sys := range s.systems {
		if l, ok := sys.(DespawnListener); ok {
			l.EntityDespawned(s, id)
		}
	}

	base := e.Base()
	base.effects.Clear()
	base.state = StateDestroyed

	s.log.WithField("entity", id.String()).Debug("Entity despawned")
	return true
}

// --- ТИК ---

// Step продвигает симуляцию на dt.
//
// Порядок:
//  1. часы;
//  2. подсистемы (выборка триггеров);
//  3. истечение эффектов и Tick каждой сущности в порядке регистрации;
//  4. отправка грязных реплицируемых полей.
//
// Действия, опубликованные до Step, уже доставлены: шина синхронная.
func (s *Sim) Step(dt time.Duration) {
	started := time.Now()

	s.tick++
	s.now += dt

	for _, sys := range s.systems {
		sys.Update(s, dt)
	}

	for e := range s.Entities.All() {
		base := e.Base()
		if !base.state.IsLive() {
			continue
		}
		if s.authority {
			base.expireEffects(s.now)
		}
		e.Tick(s, dt)
	}

	s.Flush()

	s.metrics.ticks.Add(context.Background(), 1)
	s.metrics.tickTime.Record(context.Background(), float64(time.Since(started).Microseconds())/1000)
}

// Flush отправляет изменения полей всех сущностей репликатору.
//
// Изменённый набор эффектов уходит целиком отдельным полем api.FieldEffects.
func (s *Sim) Flush() {
	if !s.authority {
		return
	}
	for e := range s.Entities.All() {
		base := e.Base()
		changes := base.Flush()
		if base.effectsDirty {
			changes = append(changes, domain.FieldChange{Field: api.FieldEffects, Value: effectViews(s, base)})
			base.effectsDirty = false
		}
		if len(changes) > 0 {
			s.replicator.Push(e.Identity(), changes)
		}
	}
}
