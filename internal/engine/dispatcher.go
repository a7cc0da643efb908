package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// SendHook наблюдает за всеми опубликованными действиями (журнал, отладка).
type SendHook func(tick uint32, a domain.Action)

type subscription struct {
	receiver Receiver
	interest []domain.ActionName
	active   bool
}

// DispatcherOptions - настройки шины.
type DispatcherOptions struct {
	MaxDepth      int  // Предел вложенности Send; 0 - domain.DefaultMaxDispatchDepth
	IsolateFaults bool // Паника одного получателя не мешает остальным
}

// Dispatcher - шина действий: индекс "имя действия -> подписчики" и синхронная доставка.
//
// Доставка идёт в порядке регистрации подписчиков. Вложенный Send из Receive
// обрабатывается сразу (в глубину), затем внешний цикл продолжается.
// Перебор идёт по снимку списка: отписанные по ходу пропускаются, новые не попадают.
type Dispatcher struct {
	index map[domain.ActionName][]*subscription
	byID  map[types.Identity]*subscription
	hooks []SendHook

	depth    int
	maxDepth int
	isolate  bool

	metrics *kernelMetrics
	log     *logrus.Entry
}

func NewDispatcher(opts DispatcherOptions, log *logrus.Entry, metrics *kernelMetrics) *Dispatcher {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = domain.DefaultMaxDispatchDepth
	}
	if metrics == nil {
		metrics = newKernelMetrics()
	}
	return &Dispatcher{
		index:    make(map[domain.ActionName][]*subscription),
		byID:     make(map[types.Identity]*subscription),
		maxDepth: opts.MaxDepth,
		isolate:  opts.IsolateFaults,
		metrics:  metrics,
		log:      log.WithField("component", "dispatcher"),
	}
}

// Subscribe публикует набор интересов получателя. Набор фиксируется на всё время жизни.
func (d *Dispatcher) Subscribe(r Receiver) error {
	id := r.Identity()
	if id.IsNil() {
		return ErrNilIdentity
	}
	if _, ok := d.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, id)
	}

	sub := &subscription{
		receiver: r,
		interest: UnionActions(r.InputActions()),
		active:   true,
	}
	for _, name := range sub.interest {
		d.index[name] = append(d.index[name], sub)
	}
	d.byID[id] = sub
	return nil
}

// Unsubscribe убирает получателя из индекса. Безопасно вызывать во время доставки.
func (d *Dispatcher) Unsubscribe(id types.Identity) bool {
	sub, ok := d.byID[id]
	if !ok {
		return false
	}
	sub.active = false
	delete(d.byID, id)

	for _, name := range sub.interest {
		list := d.index[name]
		// Новый слайс, чтобы не трогать снимки, которые сейчас перебираются
		next := make([]*subscription, 0, len(list))
		for _, s := range list {
			if s != sub {
				next = append(next, s)
			}
		}
		if len(next) == 0 {
			delete(d.index, name)
		} else {
			d.index[name] = next
		}
	}
	return true
}

// OnSend добавляет наблюдателя публикаций.
func (d *Dispatcher) OnSend(h SendHook) {
	d.hooks = append(d.hooks, h)
}

// Send синхронно доставляет действие всем заинтересованным получателям.
func (d *Dispatcher) Send(ctx *Sim, a domain.Action) {
	name := a.ActionName()

	if d.depth >= d.maxDepth {
		d.metrics.dropped.Add(context.Background(), 1, actionAttr(string(name)))
		d.log.WithFields(logrus.Fields{
			"action": name,
			"depth":  d.depth,
		}).WithError(ErrDispatchDepth).Error("Action dropped")
		return
	}

	for _, h := range d.hooks {
		h(ctx.Tick(), a)
	}
	d.metrics.sent.Add(context.Background(), 1, actionAttr(string(name)))

	subs := d.index[name]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]*subscription, len(subs))
	copy(snapshot, subs)

	d.depth++
	defer func() { d.depth-- }()

	for _, sub := range snapshot {
		if !sub.active {
			continue
		}
		d.deliver(ctx, sub.receiver, a)
	}
}

// SendChild доставляет действие дочернему элементу child сущности parent.
// Получатель сам решает, адресовано ли действие ему.
func (d *Dispatcher) SendChild(ctx *Sim, a domain.Action, parent types.Identity, child int) {
	d.Send(ctx, domain.ChildAction{Inner: a, Parent: parent, Child: child})
}

func (d *Dispatcher) deliver(ctx *Sim, r Receiver, a domain.Action) {
	if d.isolate {
		defer func() {
			if rec := recover(); rec != nil {
				d.metrics.faults.Add(context.Background(), 1, actionAttr(string(a.ActionName())))
				d.log.WithFields(logrus.Fields{
					"action":   a.ActionName(),
					"receiver": r.Identity().String(),
					"panic":    fmt.Sprint(rec),
					"stack":    string(debug.Stack()),
				}).Error("Receiver failed, delivery continues")
			}
		}()
	}

	r.Receive(ctx, a)
	d.metrics.delivered.Add(context.Background(), 1, actionAttr(string(a.ActionName())))
}

// Interested возвращает подписчиков действия в порядке регистрации.
func (d *Dispatcher) Interested(name domain.ActionName) []types.Identity {
	subs := d.index[name]
	result := make([]types.Identity, 0, len(subs))
	for _, s := range subs {
		result = append(result, s.receiver.Identity())
	}
	return result
}

// Subscriptions возвращает набор интересов получателя.
func (d *Dispatcher) Subscriptions(id types.Identity) ([]domain.ActionName, bool) {
	sub, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	result := make([]domain.ActionName, len(sub.interest))
	copy(result, sub.interest)
	return result, true
}

// DebugDump - индекс подписок для /debug/subscriptions
func (d *Dispatcher) DebugDump() map[string][]string {
	result := make(map[string][]string, len(d.index))
	for name := range d.index {
		ids := d.Interested(name)
		list := make([]string, 0, len(ids))
		for _, id := range ids {
			list = append(list, id.String())
		}
		result[string(name)] = list
	}
	return result
}
