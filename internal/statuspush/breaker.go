package statuspush

import (
	"sync"
	"time"
)

// breaker pauses a target for cooldown once it fails threshold times in a
// row. Keys are targetKey values.
type breaker struct {
	threshold int
	cooldown  time.Duration

	mu    sync.Mutex
	state map[string]trip
}

type trip struct {
	failures  int
	openUntil time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown, state: map[string]trip{}}
}

func (b *breaker) allow(key string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !now.Before(b.state[key].openUntil)
}

// failure counts one failed send and reports whether it opened the
// circuit.
func (b *breaker) failure(key string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr := b.state[key]
	tr.failures++
	opened := tr.failures >= b.threshold
	if opened {
		tr = trip{openUntil: now.Add(b.cooldown)}
	}
	b.state[key] = tr
	return opened
}

func (b *breaker) success(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.state, key)
}
