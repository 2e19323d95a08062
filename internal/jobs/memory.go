package jobs

import (
	"context"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"
)

// seenWindow is how many recent update ids the memory queue remembers.
const seenWindow = 1024

// MemoryQueue is a bounded channel drained by a fixed set of goroutines.
// Queued updates are lost if the process dies.
type MemoryQueue struct {
	processor Processor
	workers   int
	log       *slog.Logger
	seen      *recentIDs

	mu      sync.RWMutex
	updates chan telebot.Update
	closed  bool
	started bool
	wg      sync.WaitGroup
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(processor Processor, workers, buffer int, log *slog.Logger) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = slog.Default()
	}

	return &MemoryQueue{
		processor: processor,
		workers:   workers,
		log:       log,
		seen:      newRecentIDs(seenWindow),
		updates:   make(chan telebot.Update, buffer),
	}
}

// Enqueue never blocks: it returns ErrQueueFull when the buffer is exhausted and
// ErrDuplicateUpdate for an update id accepted recently.
func (q *MemoryQueue) Enqueue(_ context.Context, update telebot.Update) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	if !q.seen.add(update.ID) {
		return ErrDuplicateUpdate
	}

	select {
	case q.updates <- update:
		return nil
	default:
		// a redelivery of a dropped update must get another chance
		q.seen.remove(update.ID)
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.started {
		return nil
	}
	q.started = true

	q.log.Info("update workers starting", slog.Int("workers", q.workers), slog.Int("buffer", cap(q.updates)))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return nil
}

func (q *MemoryQueue) work() {
	defer q.wg.Done()
	for update := range q.updates {
		q.process(update)
	}
}

func (q *MemoryQueue) process(update telebot.Update) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("update processing panicked", slog.Int("update_id", update.ID), slog.Any("panic", r))
		}
	}()
	q.processor.ProcessUpdate(update)
}

// Close drains the buffered updates before returning.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.updates)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	q.wg.Wait()
	q.log.Info("update workers stopped")
	return nil
}

// recentIDs remembers the last size ids added, evicting the oldest first.
type recentIDs struct {
	mu   sync.Mutex
	ids  map[int]struct{}
	ring []int
	next int
}

func newRecentIDs(size int) *recentIDs {
	return &recentIDs{ids: make(map[int]struct{}, size), ring: make([]int, 0, size)}
}

// add records id and reports false when it is already present.
func (r *recentIDs) add(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; ok {
		return false
	}

	if len(r.ring) < cap(r.ring) {
		r.ring = append(r.ring, id)
	} else {
		delete(r.ids, r.ring[r.next])
		r.ring[r.next] = id
		r.next = (r.next + 1) % len(r.ring)
	}
	r.ids[id] = struct{}{}
	return true
}

func (r *recentIDs) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, id)
}
