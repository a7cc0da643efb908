package domain

import (
	"strings"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
)

// EffectKind - вид эффекта (баффа). На одной сущности одновременно живёт не больше одного эффекта каждого вида.
type EffectKind uint8

const (
	EffectUnknown EffectKind = iota
	EffectSupply
	EffectResourceIsland
	EffectBaseDefense
	EffectReviveInvulnerable
	EffectSentinelInvulnerable
	EffectRuneAttack
	EffectRuneDefense
	EffectCapturedHighland
	EffectOverheat
)

var effectKindToString = map[EffectKind]string{
	EffectSupply:               "SUPPLY",
	EffectResourceIsland:       "RESOURCE_ISLAND",
	EffectBaseDefense:          "BASE_DEFENSE",
	EffectReviveInvulnerable:   "REVIVE_INVULNERABLE",
	EffectSentinelInvulnerable: "SENTINEL_INVULNERABLE",
	EffectRuneAttack:           "RUNE_ATTACK",
	EffectRuneDefense:          "RUNE_DEFENSE",
	EffectCapturedHighland:     "CAPTURED_HIGHLAND",
	EffectOverheat:             "OVERHEAT",
}

var effectStringToKind = map[string]EffectKind{
	"SUPPLY":                EffectSupply,
	"RESOURCE_ISLAND":       EffectResourceIsland,
	"BASE_DEFENSE":          EffectBaseDefense,
	"REVIVE_INVULNERABLE":   EffectReviveInvulnerable,
	"SENTINEL_INVULNERABLE": EffectSentinelInvulnerable,
	"RUNE_ATTACK":           EffectRuneAttack,
	"RUNE_DEFENSE":          EffectRuneDefense,
	"CAPTURED_HIGHLAND":     EffectCapturedHighland,
	"OVERHEAT":              EffectOverheat,
}

func (k EffectKind) String() string {
	if val, ok := effectKindToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseEffectKind конвертирует строку (админская консоль, раскладки) в EffectKind
func ParseEffectKind(s string) EffectKind {
	if val, ok := effectStringToKind[strings.ToUpper(s)]; ok {
		return val
	}
	return EffectUnknown
}

// StackPolicy определяет поведение повторного добавления эффекта того же вида.
type StackPolicy uint8

const (
	// StackUnique: повторное добавление при наличии эффекта игнорируется (первая запись побеждает).
	StackUnique StackPolicy = iota
	// StackReplace: повторное добавление перезаписывает значение и перезапускает таймер.
	StackReplace
)

// Виды, которые обновляются при повторной выдаче. Все остальные - StackUnique.
var replaceKinds = map[EffectKind]bool{
	EffectReviveInvulnerable: true,
	EffectRuneAttack:         true,
	EffectRuneDefense:        true,
	EffectOverheat:           true,
}

// Policy возвращает политику наложения для вида.
func (k EffectKind) Policy() StackPolicy {
	if replaceKinds[k] {
		return StackReplace
	}
	return StackUnique
}

// Effect - модификатор, прикреплённый ровно к одной сущности.
//
// Duration == 0 означает "до явного снятия". Deadline считается реестром при добавлении
// (время симуляции, а не wall clock).
type Effect struct {
	Kind     EffectKind     `json:"kind"`
	Value    float64        `json:"value,omitempty"`
	Source   types.Identity `json:"source"`
	Duration time.Duration  `json:"duration,omitempty"`
	Deadline time.Duration  `json:"deadline,omitempty"`
}

// Expires - true, если у эффекта есть срок жизни.
func (e Effect) Expires() bool {
	return e.Duration > 0
}
