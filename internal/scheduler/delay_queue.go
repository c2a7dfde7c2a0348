package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/jobs/dcron/internal/biz/task"
)

type delayItem struct {
	task  *task.Task
	at    time.Time
	index int
}

type delayHeap []*delayItem

func (h delayHeap) Len() int { return len(h) }

func (h delayHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].task.ID < h[j].task.ID
	}
	return h[i].at.Before(h[j].at)
}

func (h delayHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayHeap) Push(x any) {
	item := x.(*delayItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// DelayQueue 按触发时间排序的进程内队列, 每个任务最多一份
type DelayQueue struct {
	mu    sync.Mutex
	now   func() time.Time
	items delayHeap
	byID  map[uint64]*delayItem
	wake  chan struct{}
}

func NewDelayQueue(now func() time.Time) *DelayQueue {
	if now == nil {
		now = time.Now
	}
	return &DelayQueue{
		now:  now,
		byID: make(map[uint64]*delayItem),
		wake: make(chan struct{}, 1),
	}
}

// Push 入队, 同一任务已在队列中时替换为新的快照和时间
func (q *DelayQueue) Push(t *task.Task, at time.Time) {
	q.mu.Lock()
	if item, ok := q.byID[t.ID]; ok {
		item.task = t
		item.at = at
		heap.Fix(&q.items, item.index)
	} else {
		item = &delayItem{task: t, at: at}
		heap.Push(&q.items, item)
		q.byID[t.ID] = item
	}
	q.mu.Unlock()
	q.signal()
}

func (q *DelayQueue) Remove(taskID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.byID[taskID]
	if !ok {
		return false
	}
	heap.Remove(&q.items, item.index)
	delete(q.byID, taskID)
	return true
}

// Reschedule 修改已入队任务的触发时间
func (q *DelayQueue) Reschedule(taskID uint64, at time.Time) bool {
	q.mu.Lock()
	item, ok := q.byID[taskID]
	if ok {
		item.at = at
		heap.Fix(&q.items, item.index)
	}
	q.mu.Unlock()
	if ok {
		q.signal()
	}
	return ok
}

func (q *DelayQueue) Contains(taskID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.byID[taskID]
	return ok
}

func (q *DelayQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain empties the queue and returns what was in it, earliest first.
func (q *DelayQueue) Drain() []*task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*task.Task, 0, len(q.items))
	for q.items.Len() > 0 {
		item := heap.Pop(&q.items).(*delayItem)
		out = append(out, item.task)
	}
	q.byID = make(map[uint64]*delayItem)
	return out
}

// Take blocks until the earliest item is due or ctx is done.
func (q *DelayQueue) Take(ctx context.Context) (*task.Task, error) {
	for {
		q.mu.Lock()
		wait := time.Duration(-1)
		if q.items.Len() > 0 {
			head := q.items[0]
			wait = head.at.Sub(q.now())
			if wait <= 0 {
				heap.Pop(&q.items)
				delete(q.byID, head.task.ID)
				q.mu.Unlock()
				return head.task, nil
			}
		}
		q.mu.Unlock()

		var timer *time.Timer
		var fire <-chan time.Time
		if wait > 0 {
			timer = time.NewTimer(wait)
			fire = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil, ctx.Err()
		case <-q.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (q *DelayQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
