package engine

import (
	"container/heap"
	"time"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
)

// effectItem обертка для элемента очереди сроков
type effectItem struct {
	Effect domain.Effect
	Seq    uint64 // Порядок добавления: при равных сроках раньше истекает тот, кто добавлен раньше
	Index  int    // Индекс в куче (нужен для update/remove), -1 если эффект бессрочный
}

// effectQueue реализует heap.Interface и хранит эффекты со сроком жизни
type effectQueue []*effectItem

func (pq effectQueue) Len() int { return len(pq) }

func (pq effectQueue) Less(i, j int) bool {
	// MinHeap по Deadline
	if pq[i].Effect.Deadline != pq[j].Effect.Deadline {
		return pq[i].Effect.Deadline < pq[j].Effect.Deadline
	}
	return pq[i].Seq < pq[j].Seq
}

func (pq effectQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *effectQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*effectItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *effectQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// update изменяет срок элемента в очереди
func (pq *effectQueue) update(item *effectItem, deadline time.Duration) {
	item.Effect.Deadline = deadline
	heap.Fix(pq, item.Index)
}

// peek возвращает ближайший по сроку элемент без извлечения
func (pq effectQueue) peek() *effectItem {
	if len(pq) == 0 {
		return nil
	}
	return pq[0]
}
