package domain

import (
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
)

// JournalEntry - запись одного опубликованного действия.
type JournalEntry struct {
	Tick    uint32         `json:"tick"`
	Name    ActionName     `json:"name"`
	Child   bool           `json:"child,omitempty"`  // Доставлено через SendChild
	Parent  types.Identity `json:"parent,omitempty"` // Адресат SendChild
	Slot    int            `json:"slot,omitempty"`   // Индекс дочернего элемента
	Payload []byte         `json:"payload"`          // msgpack (EncodeAction)
}

// Decode восстанавливает действие из записи (включая обёртку ChildAction).
func (e JournalEntry) Decode() (Action, error) {
	a, err := DecodeAction(e.Name, e.Payload)
	if err != nil {
		return nil, err
	}
	if e.Child {
		return ChildAction{Inner: a, Parent: e.Parent, Child: e.Slot}, nil
	}
	return a, nil
}

// NewJournalEntry кодирует действие для журнала.
func NewJournalEntry(tick uint32, a Action) (JournalEntry, error) {
	payload, err := EncodeAction(a)
	if err != nil {
		return JournalEntry{}, err
	}
	entry := JournalEntry{Tick: tick, Name: a.ActionName(), Payload: payload}
	if child, ok := a.(ChildAction); ok {
		entry.Child = true
		entry.Parent = child.Parent
		entry.Slot = child.Child
	}
	return entry, nil
}

// ReplaySession - полная запись матча
type ReplaySession struct {
	MatchID   string         `json:"matchId"`
	Seed      int64          `json:"seed"` // Зерно генератора случайных чисел матча
	Timestamp int64          `json:"timestamp"`
	Layout    string         `json:"layout"`
	Entries   []JournalEntry `json:"entries"`
}

// MatchRecord - итог матча для архива (gorm).
type MatchRecord struct {
	ID        string
	Layout    string
	Seed      int64
	StartedAt time.Time
	EndedAt   time.Time
	Ticks     uint32
	Winner    enums.Camp
	Events    []MatchEvent
}
