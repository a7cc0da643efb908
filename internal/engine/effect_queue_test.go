package engine

import (
	"container/heap"
	"testing"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

func TestEffectQueue(t *testing.T) {
	pq := make(effectQueue, 0)
	heap.Init(&pq)

	item1 := &effectItem{Effect: domain.Effect{Kind: domain.EffectSupply, Deadline: 10 * time.Second}, Seq: 1}
	item2 := &effectItem{Effect: domain.Effect{Kind: domain.EffectRuneAttack, Deadline: 5 * time.Second}, Seq: 2}
	item3 := &effectItem{Effect: domain.Effect{Kind: domain.EffectOverheat, Deadline: 20 * time.Second}, Seq: 3}

	heap.Push(&pq, item1)
	heap.Push(&pq, item2)
	heap.Push(&pq, item3)

	if pq.Len() != 3 {
		t.Errorf("Expected length 3, got %d", pq.Len())
	}

	// Первым должен выйти RuneAttack (5s)
	first := heap.Pop(&pq).(*effectItem)
	if first.Effect.Kind != domain.EffectRuneAttack {
		t.Errorf("Expected RUNE_ATTACK, got %s", first.Effect.Kind)
	}

	// Продлеваем Supply 10s -> 30s, теперь вершина Overheat (20s)
	pq.update(item1, 30*time.Second)

	second := heap.Pop(&pq).(*effectItem)
	if second.Effect.Kind != domain.EffectOverheat {
		t.Errorf("Expected OVERHEAT (20s), got %s", second.Effect.Kind)
	}

	third := heap.Pop(&pq).(*effectItem)
	if third.Effect.Kind != domain.EffectSupply {
		t.Errorf("Expected SUPPLY (30s), got %s", third.Effect.Kind)
	}
	if third.Index != -1 {
		t.Errorf("Popped item must have index -1, got %d", third.Index)
	}
}

func TestEffectQueue_TieBreakBySeq(t *testing.T) {
	pq := make(effectQueue, 0)
	late := &effectItem{Effect: domain.Effect{Kind: domain.EffectSupply, Deadline: time.Second}, Seq: 9}
	early := &effectItem{Effect: domain.Effect{Kind: domain.EffectOverheat, Deadline: time.Second}, Seq: 1}
	heap.Push(&pq, late)
	heap.Push(&pq, early)

	if got := pq.peek(); got != early {
		t.Errorf("Expected item with lower seq first, got %s", got.Effect.Kind)
	}
}
