package notifications

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// breaker counts consecutive failures. It opens at threshold and, after cooldown, lets
// up to trials calls through; one success closes it, one failure reopens it.
type breaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	trials    int
	onChange  func(from, to string)
	now       func() time.Time

	state    breakerState
	failures int
	openedAt time.Time
	probing  int
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.moveTo(stateHalfOpen)
	}

	if b.state == stateHalfOpen {
		if b.probing >= b.trials {
			return false
		}
		b.probing++
	}
	return true
}

func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasProbe := b.state == stateHalfOpen
	if wasProbe && b.probing > 0 {
		b.probing--
	}

	if err == nil {
		b.failures = 0
		b.moveTo(stateClosed)
		return
	}

	b.failures++
	if wasProbe || b.failures >= b.threshold {
		b.openedAt = b.now()
		b.moveTo(stateOpen)
	}
}

// moveTo must be called with mu held.
func (b *breaker) moveTo(next breakerState) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	if next != stateHalfOpen {
		b.probing = 0
	}
	if b.onChange != nil {
		b.onChange(prev.String(), next.String())
	}
}
