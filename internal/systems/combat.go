package systems

import (
	"github.com/sirupsen/logrus"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/logger"
)

// EffectReader - чтение эффектов сущности. *engine.Store неявно реализует этот интерфейс.
type EffectReader interface {
	HasEffect(kind domain.EffectKind) bool
	Effect(kind domain.EffectKind) (domain.Effect, bool)
}

// DamageReport - результат расчёта урона (для логов и наблюдателей).
type DamageReport struct {
	Base       int
	Multiplier float64
	Final      int
	Blocked    bool // Цель неуязвима
}

// ProjectileDamage - базовый урон снаряда стрелка с учётом его бонусов атаки.
func ProjectileDamage(large bool, shooter EffectReader) int {
	base := domain.SmallProjectileDamage
	if large {
		base = domain.LargeProjectileDamage
	}

	bonus := 0.0
	if e, ok := shooter.Effect(domain.EffectRuneAttack); ok {
		bonus += effectValue(e, domain.RuneAttackBonus)
	}
	if e, ok := shooter.Effect(domain.EffectCapturedHighland); ok {
		bonus += effectValue(e, domain.HighlandAttackBonus)
	}
	return int(float64(base) * (1 + bonus))
}

// ApplyDamage считает урон, который получит цель. Само здоровье меняет владелец.
func ApplyDamage(shooter, target types.Identity, damage int, effects EffectReader) DamageReport {
	combatLogger := logger.Log.WithFields(logrus.Fields{
		"component": "combat_system",
		"shooter":   shooter.String(),
		"target":    target.String(),
	})

	report := DamageReport{Base: damage, Multiplier: 1}

	// --- Проверка неуязвимости ---

	if effects.HasEffect(domain.EffectReviveInvulnerable) || effects.HasEffect(domain.EffectSentinelInvulnerable) {
		report.Blocked = true
		report.Multiplier = 0
		combatLogger.Debug("Hit blocked: target is invulnerable.")
		return report
	}

	// --- Расчёт защиты ---

	if e, ok := effects.Effect(domain.EffectRuneDefense); ok {
		report.Multiplier -= effectValue(e, domain.RuneDefenseBonus)
	}
	if e, ok := effects.Effect(domain.EffectBaseDefense); ok {
		report.Multiplier -= effectValue(e, domain.BaseDefenseBonus)
	}
	if report.Multiplier < 0 {
		report.Multiplier = 0
	}

	report.Final = int(float64(damage) * report.Multiplier)
	if report.Final < 1 && damage > 0 && report.Multiplier > 0 {
		report.Final = 1
	}

	combatLogger.WithFields(logrus.Fields{
		"base_damage":  report.Base,
		"multiplier":   report.Multiplier,
		"final_damage": report.Final,
	}).Debug("Hit resolved.")

	return report
}

// effectValue - величина эффекта или значение по умолчанию для вида, если она не задана.
func effectValue(e domain.Effect, fallback float64) float64 {
	if e.Value > 0 {
		return e.Value
	}
	return fallback
}
