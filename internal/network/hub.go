package network

import (
	"sync"
	"sync/atomic"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

// SubscriberBuffer - размер личного канала наблюдателя.
const SubscriberBuffer = 128

// Hub рассылает кадры наблюдателям одного матча.
//
// Со стороны цикла матча это репликатор: Push и Call копят изменения тика,
// Flush упаковывает их в кадры и раздаёт всем подписчикам.
// Медленный подписчик теряет кадры, цикл матча никогда не ждёт сеть.
type Hub struct {
	match string

	mu sync.RWMutex
	// Мапа: ID сессии -> Личный канал
	subscribers map[string]chan api.Frame

	pendingMu sync.Mutex
	changes   []api.FieldUpdate
	calls     []api.ObserverCall

	dropped atomic.Uint64
}

func NewHub(match string) *Hub {
	return &Hub{
		match:       match,
		subscribers: make(map[string]chan api.Frame),
	}
}

// Match возвращает ID матча, который обслуживает хаб.
func (h *Hub) Match() string {
	return h.match
}

// Register создает личный канал для сессии (оператор, зритель или бот)
func (h *Hub) Register(session string) chan api.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := h.subscribers[session]; ok {
		close(old)
	}

	ch := make(chan api.Frame, SubscriberBuffer)
	h.subscribers[session] = ch
	return ch
}

// Unregister удаляет подписчика
func (h *Hub) Unregister(session string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[session]; ok {
		close(ch)
		delete(h.subscribers, session)
	}
}

// Close отключает всех подписчиков (матч завершён).
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for session, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, session)
	}
}

// --- РЕПЛИКАЦИЯ ---

// Push копит изменения полей до конца тика.
func (h *Hub) Push(entity types.Identity, changes []domain.FieldChange) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()

	id := entity.String()
	for _, c := range changes {
		h.changes = append(h.changes, api.FieldUpdate{Entity: id, Field: c.Field, Value: c.Value})
	}
}

// Call копит односторонний вызов на копиях сущности.
func (h *Hub) Call(entity types.Identity, method string, args ...any) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()

	h.calls = append(h.calls, api.ObserverCall{Entity: entity.String(), Method: method, Args: args})
}

// Flush рассылает всё накопленное за тик: UPDATE, затем CALL, затем LOG.
// Пустые кадры не отправляются.
func (h *Hub) Flush(tick uint32, logs []api.LogEntry) {
	h.pendingMu.Lock()
	changes, calls := h.changes, h.calls
	h.changes, h.calls = nil, nil
	h.pendingMu.Unlock()

	if len(changes) > 0 {
		h.Broadcast(api.Frame{Type: api.FrameUpdate, Match: h.match, Tick: tick, Changes: changes})
	}
	if len(calls) > 0 {
		h.Broadcast(api.Frame{Type: api.FrameCall, Match: h.match, Tick: tick, Calls: calls})
	}
	if len(logs) > 0 {
		h.Broadcast(api.Frame{Type: api.FrameLog, Match: h.match, Tick: tick, Logs: logs})
	}
}

// --- ОТПРАВКА ---

// SendTo отправляет кадр конкретной сессии (Unicast)
func (h *Hub) SendTo(session string, frame api.Frame) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ch, ok := h.subscribers[session]
	if !ok {
		return false
	}
	return h.offer(ch, frame)
}

// Broadcast отправляет кадр всем наблюдателям матча
func (h *Hub) Broadcast(frame api.Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		h.offer(ch, frame)
	}
}

func (h *Hub) offer(ch chan api.Frame, frame api.Frame) bool {
	select {
	case ch <- frame:
		return true
	default:
		// Канал полон: кадр теряется, наблюдатель догонит следующим снимком
		h.dropped.Add(1)
		return false
	}
}

// HasSubscriber проверяет, подключена ли сессия
func (h *Hub) HasSubscriber(session string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.subscribers[session]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped - сколько кадров потеряно из-за переполненных каналов.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
