package systems

import (
	"testing"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// effectSet - простая реализация EffectReader для тестов.
type effectSet map[domain.EffectKind]domain.Effect

func (s effectSet) HasEffect(kind domain.EffectKind) bool {
	_, ok := s[kind]
	return ok
}

func (s effectSet) Effect(kind domain.EffectKind) (domain.Effect, bool) {
	e, ok := s[kind]
	return e, ok
}

var (
	shooterID = types.NewIdentity(enums.CampRed, enums.RoleHero, 1, 0)
	targetID  = types.NewIdentity(enums.CampBlue, enums.RoleInfantry, 3, 0)
)

func TestProjectileDamage(t *testing.T) {
	tests := []struct {
		name    string
		large   bool
		effects effectSet
		want    int
	}{
		{"small", false, effectSet{}, domain.SmallProjectileDamage},
		{"large", true, effectSet{}, domain.LargeProjectileDamage},
		{"rune attack default", true, effectSet{domain.EffectRuneAttack: {Kind: domain.EffectRuneAttack}}, 150},
		{"rune + highland", false, effectSet{
			domain.EffectRuneAttack:       {Kind: domain.EffectRuneAttack, Value: 1},
			domain.EffectCapturedHighland: {Kind: domain.EffectCapturedHighland},
		}, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectileDamage(tt.large, tt.effects); got != tt.want {
				t.Errorf("ProjectileDamage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApplyDamage(t *testing.T) {
	tests := []struct {
		name        string
		effects     effectSet
		damage      int
		wantFinal   int
		wantBlocked bool
	}{
		{"plain", effectSet{}, 100, 100, false},
		{"revive invulnerable", effectSet{domain.EffectReviveInvulnerable: {}}, 100, 0, true},
		{"sentinel invulnerable", effectSet{domain.EffectSentinelInvulnerable: {}}, 100, 0, true},
		{"rune defense", effectSet{domain.EffectRuneDefense: {Kind: domain.EffectRuneDefense}}, 100, 75, false},
		{"base defense", effectSet{domain.EffectBaseDefense: {Kind: domain.EffectBaseDefense}}, 10, 5, false},
		{"minimum one", effectSet{domain.EffectRuneDefense: {Value: 0.95}}, 10, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ApplyDamage(shooterID, targetID, tt.damage, tt.effects)
			if report.Final != tt.wantFinal {
				t.Errorf("Final = %d, want %d", report.Final, tt.wantFinal)
			}
			if report.Blocked != tt.wantBlocked {
				t.Errorf("Blocked = %v, want %v", report.Blocked, tt.wantBlocked)
			}
		})
	}
}
