package domain

import "time"

// Параметры цикла симуляции
const (
	DefaultTickRate         = 50 // Гц
	DefaultMaxDispatchDepth = 64
)

// Этапы матча
const (
	StagePrepare = "PREPARE"
	StageRunning = "RUNNING"
	StageEnded   = "ENDED"
)

// Правила матча по умолчанию
const (
	CaptureDuration            = 6 * time.Second
	RuneActivatedDuration      = 45 * time.Second
	RuneHitTimeout             = 2500 * time.Millisecond
	RuneBranches               = 5
	SupplyCooldown             = 1 * time.Second
	MatchDuration              = 7 * time.Minute
	ReviveDelay                = 10 * time.Second
	ReviveInvulnerableDuration = 10 * time.Second
)

// Модификаторы эффектов
const (
	RuneAttackBonus          = 0.5  // +50% урона
	RuneDefenseBonus         = 0.25 // -25% входящего урона
	BaseDefenseBonus         = 0.5
	ResourceIslandRegenRatio = 0.02 // доля MaxHP в секунду
	HighlandAttackBonus      = 0.25
)

// Боевые константы
const (
	SmallProjectileDamage = 10
	LargeProjectileDamage = 100
	ArmorPlates           = 4
	SentinelFireInterval  = 500 * time.Millisecond
)

// Моменты матча, когда судья включает руну (от начала этапа Running).
var RuneEnableSchedule = []time.Duration{
	1 * time.Minute,
	4 * time.Minute,
}

// Rules - набор правил, которые читают сущности. Переопределяется конфигурацией.
type Rules struct {
	CaptureDuration       time.Duration   `json:"captureDuration"`
	RuneActivatedDuration time.Duration   `json:"runeActivatedDuration"`
	RuneHitTimeout        time.Duration   `json:"runeHitTimeout"`
	RuneBranches          int             `json:"runeBranches"`
	SupplyCooldown        time.Duration   `json:"supplyCooldown"`
	MatchDuration         time.Duration   `json:"matchDuration"`
	ReviveDelay           time.Duration   `json:"reviveDelay"`
	RuneEnableSchedule    []time.Duration `json:"runeEnableSchedule"`
}

// DefaultRules возвращает правила по умолчанию.
func DefaultRules() Rules {
	schedule := make([]time.Duration, len(RuneEnableSchedule))
	copy(schedule, RuneEnableSchedule)

	return Rules{
		CaptureDuration:       CaptureDuration,
		RuneActivatedDuration: RuneActivatedDuration,
		RuneHitTimeout:        RuneHitTimeout,
		RuneBranches:          RuneBranches,
		SupplyCooldown:        SupplyCooldown,
		MatchDuration:         MatchDuration,
		ReviveDelay:           ReviveDelay,
		RuneEnableSchedule:    schedule,
	}
}
