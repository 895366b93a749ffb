package mqtt

import (
	"sync"
	"time"
)

// backoff produces the reconnect delay sequence: starting at the floor,
// doubling after each failed attempt, capped at the ceiling. A successful
// connect resets it to the floor.
//
// With the default 5s floor and 300s ceiling the sequence is
// 5, 10, 20, 40, 80, 160, 300, 300, ...
type backoff struct {
	mu      sync.Mutex
	floor   time.Duration
	ceiling time.Duration
	current time.Duration
}

// newBackoff creates a backoff with the given bounds.
// Non-positive bounds fall back to the 5s/300s defaults.
func newBackoff(floor, ceiling time.Duration) *backoff {
	if floor <= 0 {
		floor = 5 * time.Second
	}
	if ceiling < floor {
		ceiling = 300 * time.Second
	}
	return &backoff{
		floor:   floor,
		ceiling: ceiling,
		current: floor,
	}
}

// Next returns the delay to wait before the next attempt and advances
// the sequence.
func (b *backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.current
	b.current *= 2
	if b.current > b.ceiling {
		b.current = b.ceiling
	}
	return delay
}

// Reset returns the sequence to the floor. Called after a successful
// connect.
func (b *backoff) Reset() {
	b.mu.Lock()
	b.current = b.floor
	b.mu.Unlock()
}
