package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

func TestEffectRegistry_UniqueIsIdempotent(t *testing.T) {
	r := NewEffectRegistry()
	e := domain.Effect{Kind: domain.EffectSupply, Value: 1}

	assert.True(t, r.Add(e, 0))
	assert.False(t, r.Add(e, time.Second), "second add of a unique kind must be a no-op")
	assert.Equal(t, 1, r.Len())

	// Удаление отсутствующего - no-op
	assert.True(t, r.Remove(domain.EffectSupply))
	assert.False(t, r.Remove(domain.EffectSupply))
	assert.False(t, r.Has(domain.EffectSupply))
}

func TestEffectRegistry_ReplaceLastWriteWins(t *testing.T) {
	r := NewEffectRegistry()
	r.Add(domain.Effect{Kind: domain.EffectRuneAttack, Value: 0.5, Duration: 10 * time.Second}, 0)
	r.Add(domain.Effect{Kind: domain.EffectRuneAttack, Value: 1.0, Duration: 20 * time.Second}, 5*time.Second)

	got, ok := r.Get(domain.EffectRuneAttack)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got.Value)
	assert.Equal(t, 25*time.Second, got.Deadline)
	assert.Equal(t, 1, r.Len())

	// Старый срок больше не действует
	assert.Empty(t, r.Expire(15*time.Second))
	assert.Len(t, r.Expire(25*time.Second), 1)
}

func TestEffectRegistry_ReplaceTogglesExpiry(t *testing.T) {
	r := NewEffectRegistry()
	r.Add(domain.Effect{Kind: domain.EffectOverheat, Duration: time.Second}, 0)
	r.Add(domain.Effect{Kind: domain.EffectOverheat}, 0)

	assert.Empty(t, r.Expire(time.Hour), "permanent replacement must leave the queue")
	assert.True(t, r.Has(domain.EffectOverheat))

	r.Add(domain.Effect{Kind: domain.EffectOverheat, Duration: time.Second}, time.Hour)
	assert.Len(t, r.Expire(time.Hour+time.Second), 1)
	assert.Zero(t, r.Len())
}

func TestEffectRegistry_IndependentExpiry(t *testing.T) {
	r := NewEffectRegistry()
	r.Add(domain.Effect{Kind: domain.EffectSupply}, 0)
	r.Add(domain.Effect{Kind: domain.EffectReviveInvulnerable, Duration: 3 * time.Second}, 0)
	r.Add(domain.Effect{Kind: domain.EffectRuneDefense, Duration: time.Second}, 0)

	tests := []struct {
		now       time.Duration
		wantGone  []domain.EffectKind
		wantAlive []domain.EffectKind
	}{
		{500 * time.Millisecond, nil, []domain.EffectKind{domain.EffectSupply, domain.EffectReviveInvulnerable, domain.EffectRuneDefense}},
		{time.Second, []domain.EffectKind{domain.EffectRuneDefense}, []domain.EffectKind{domain.EffectSupply, domain.EffectReviveInvulnerable}},
		{10 * time.Second, []domain.EffectKind{domain.EffectReviveInvulnerable}, []domain.EffectKind{domain.EffectSupply}},
	}

	for _, tt := range tests {
		var gone []domain.EffectKind
		for _, e := range r.Expire(tt.now) {
			gone = append(gone, e.Kind)
		}
		assert.Equal(t, tt.wantGone, gone, "expired at %v", tt.now)
		for _, kind := range tt.wantAlive {
			assert.True(t, r.Has(kind), "%s must survive at %v", kind, tt.now)
		}
	}
}

func TestEffectRegistry_AllKeepsInsertionOrder(t *testing.T) {
	r := NewEffectRegistry()
	kinds := []domain.EffectKind{domain.EffectBaseDefense, domain.EffectSupply, domain.EffectCapturedHighland}
	for _, k := range kinds {
		r.Add(domain.Effect{Kind: k}, 0)
	}
	r.Remove(domain.EffectSupply)

	var got []domain.EffectKind
	for _, e := range r.All() {
		got = append(got, e.Kind)
	}
	assert.Equal(t, []domain.EffectKind{domain.EffectBaseDefense, domain.EffectCapturedHighland}, got)

	assert.Len(t, r.Clear(), 2)
	assert.Zero(t, r.Len())
	assert.NotNil(t, r.DebugDump())
}

func TestEffectRegistry_UnknownKindRejected(t *testing.T) {
	r := NewEffectRegistry()
	assert.False(t, r.Add(domain.Effect{}, 0))
	assert.Zero(t, r.Len())
}
