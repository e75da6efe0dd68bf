// Package retry holds transient charge failures for bounded re-submission.
package retry

import (
	"sync"
	"time"

	"github.com/vantagepay/payment-engine/internal/config"
	"github.com/vantagepay/payment-engine/internal/model"
)

// Entry is one queued charge retry. Attempt is the retry about to run, so
// backoff schedules attempt N at enqueue-time + N * base delay.
type Entry struct {
	Request     model.PaymentRequest `json:"request"`
	Attempt     int                  `json:"attempt"`
	NextRetryAt time.Time            `json:"next_retry_at"`
}

// Queue is a bounded, mutex-guarded map of request id to retry entry. An id
// already present keeps its existing entry: the same logical payment is
// never scheduled twice.
type Queue struct {
	mu       sync.Mutex
	entries  map[string]Entry
	capacity int
}

// NewQueue creates a queue with the default capacity.
func NewQueue() *Queue {
	return NewQueueWithCapacity(config.RetryQueueCapacity)
}

// NewQueueWithCapacity creates a queue bounded to the given size.
func NewQueueWithCapacity(capacity int) *Queue {
	return &Queue{
		entries:  make(map[string]Entry),
		capacity: capacity,
	}
}

// Enqueue schedules the first retry for a request. It reports false when the
// id is already queued or the queue is full.
func (q *Queue) Enqueue(req model.PaymentRequest, nextRetryAt time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.entries[req.ID]; exists {
		return false
	}
	if len(q.entries) >= q.capacity {
		return false
	}
	q.entries[req.ID] = Entry{Request: req, Attempt: 1, NextRetryAt: nextRetryAt}
	return true
}

// Due returns copies of every entry whose retry time has passed.
func (q *Queue) Due(now time.Time) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	var due []Entry
	for _, e := range q.entries {
		if !e.NextRetryAt.After(now) {
			due = append(due, e)
		}
	}
	return due
}

// Reschedule bumps an entry to its next attempt. No-op if the entry was
// removed in the meantime.
func (q *Queue) Reschedule(id string, attempt int, nextRetryAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[id]
	if !ok {
		return
	}
	e.Attempt = attempt
	e.NextRetryAt = nextRetryAt
	q.entries[id] = e
}

// Remove drops an entry.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, id)
}

// Contains reports whether the id is queued.
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[id]
	return ok
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
