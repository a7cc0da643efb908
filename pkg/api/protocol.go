package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// FrameType - вид кадра репликации.
type FrameType string

const (
	// FrameSnapshot - полный снимок матча. Первый кадр нового наблюдателя.
	FrameSnapshot FrameType = "SNAPSHOT"
	// FrameUpdate - изменённые реплицируемые поля за тик.
	FrameUpdate FrameType = "UPDATE"
	// FrameCall - односторонние вызовы методов на копиях сущностей (эффекты, подсветка).
	FrameCall FrameType = "CALL"
	// FrameLog - сообщения матча (ошибки команд, события судьи).
	FrameLog FrameType = "LOG"
)

// Frame это корневой объект, который сервер отправляет наблюдателю.
// Кодируется msgpack (см. EncodeFrame), в отладочных ручках - JSON.
type Frame struct {
	// Type вид кадра. От него зависит, какие срезы заполнены.
	Type FrameType `json:"type" msgpack:"type"`

	// Match ID матча (ULID).
	Match string `json:"match" msgpack:"match"`

	// Tick номер тика симуляции, на котором собран кадр.
	Tick uint32 `json:"tick" msgpack:"tick"`

	// MyEntityID сущность, которой управляет этот клиент. Пусто у чистого наблюдателя.
	MyEntityID string `json:"myEntityId,omitempty" msgpack:"myEntityId,omitempty"`

	// Entities все сущности матча (только SNAPSHOT).
	Entities []EntityView `json:"entities,omitempty" msgpack:"entities,omitempty"`

	// Changes изменения полей (только UPDATE).
	Changes []FieldUpdate `json:"changes,omitempty" msgpack:"changes,omitempty"`

	// Calls вызовы на копиях (только CALL).
	Calls []ObserverCall `json:"calls,omitempty" msgpack:"calls,omitempty"`

	// Logs срез новых сообщений.
	Logs []LogEntry `json:"logs,omitempty" msgpack:"logs,omitempty"`
}

// EntityView это DTO одной сущности в снимке.
type EntityView struct {
	ID      string         `json:"id" msgpack:"id"`
	Camp    string         `json:"camp" msgpack:"camp"`
	Role    string         `json:"role" msgpack:"role"`
	State   string         `json:"state" msgpack:"state"`
	Fields  map[string]any `json:"fields" msgpack:"fields"`
	Effects []EffectView   `json:"effects,omitempty" msgpack:"effects,omitempty"`
}

// EffectView это DTO эффекта.
type EffectView struct {
	Kind   string  `json:"kind" msgpack:"kind"`
	Value  float64 `json:"value" msgpack:"value"`
	Source string  `json:"source,omitempty" msgpack:"source,omitempty"`

	// Remaining оставшееся время в секундах. 0 - бессрочный.
	Remaining float64 `json:"remaining,omitempty" msgpack:"remaining,omitempty"`
}

// FieldUpdate - новое значение одного реплицируемого поля.
type FieldUpdate struct {
	Entity string `json:"entity" msgpack:"entity"`
	Field  string `json:"field" msgpack:"field"`
	Value  any    `json:"value" msgpack:"value"`
}

// FieldEffects - поле UPDATE с полным текущим набором эффектов сущности ([]EffectView).
const FieldEffects = "effects"

// ObserverCall - вызов метода на копии сущности у наблюдателя.
type ObserverCall struct {
	Entity string `json:"entity" msgpack:"entity"`
	Method string `json:"method" msgpack:"method"`
	Args   []any  `json:"args,omitempty" msgpack:"args,omitempty"`
}

// LogEntry представляет одну запись в логе матча.
type LogEntry struct {
	ID        string `json:"id" msgpack:"id"`
	Text      string `json:"text" msgpack:"text"`
	Type      string `json:"type" msgpack:"type"`           // INFO, COMBAT, RULES, ERROR
	Timestamp int64  `json:"timestamp" msgpack:"timestamp"` // Unix milliseconds
}

// MatchInfo - краткое описание матча для /debug/matches.
type MatchInfo struct {
	ID        string  `json:"id"`
	Layout    string  `json:"layout"`
	Seed      int64   `json:"seed"`
	Tick      uint32  `json:"tick"`
	SimTime   float64 `json:"simTime"`
	Entities  int     `json:"entities"`
	Observers int     `json:"observers"`
	Stage     string  `json:"stage,omitempty"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token Identity робота, от имени которого выполняется действие ("RED/INFANTRY#3.0").
	// Пусто - чистый наблюдатель (допустим только INIT).
	Token string `json:"token,omitempty"`

	// Match ID матча. Обязателен только для "INIT"; пусто - первый запущенный матч.
	Match string `json:"match,omitempty"`

	// Action название действия, которое нужно выполнить.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// MovePayload задаёт точку на поле в метрах (MOVE).
type MovePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FirePayload - выстрел по плите брони цели (FIRE).
type FirePayload struct {
	TargetID string `json:"targetId"`
	Plate    int    `json:"plate"`
}

// SupplyPayload - запрос пополнения боезапаса (SUPPLY).
type SupplyPayload struct {
	Amount int `json:"amount"`
}

// RunePayload используется для RUNE_START.
type RunePayload struct {
	RuneID string `json:"runeId"`
}

// RuneHitPayload - попадание в ветвь руны (RUNE_HIT).
type RuneHitPayload struct {
	RuneID string `json:"runeId"`
	Branch int    `json:"branch"`
}

// EntityPayload используется для действий, нацеленных на другую сущность (KILL, REVIVE).
type EntityPayload struct {
	TargetID string `json:"targetId"`
}

// GrantPayload - выдача эффекта (GRANT).
type GrantPayload struct {
	TargetID string  `json:"targetId"`
	Kind     string  `json:"kind"`
	Value    float64 `json:"value,omitempty"`
	Seconds  float64 `json:"seconds,omitempty"` // 0 - до снятия
}

// RevokePayload - снятие эффекта (REVOKE).
type RevokePayload struct {
	TargetID string `json:"targetId"`
	Kind     string `json:"kind"`
}
