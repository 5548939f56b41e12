package provider

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker trips after a run of consecutive bulk-send failures and
// lets a single probe through once the open window has elapsed. Stop
// calls bypass it; they are best-effort by contract.
type circuitBreaker struct {
	mu            sync.Mutex
	st            breakerState
	fails         int
	failThreshold int
	openFor       time.Duration
	retryAt       time.Time
	probing       bool
}

func newCircuitBreaker(threshold int, openFor time.Duration) *circuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if openFor <= 0 {
		openFor = 15 * time.Second
	}
	return &circuitBreaker{failThreshold: threshold, openFor: openFor}
}

// allow reports whether a call may proceed now, reserving the half-open
// probe slot when applicable.
func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.st {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Now().After(b.retryAt) && !b.probing {
			b.st = breakerHalfOpen
			b.probing = true
			return true
		}
		return false
	default: // half-open
		if !b.probing {
			b.probing = true
			return true
		}
		return false
	}
}

func (b *circuitBreaker) onSuccess() {
	b.mu.Lock()
	b.fails = 0
	b.st = breakerClosed
	b.probing = false
	b.mu.Unlock()
}

func (b *circuitBreaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.st == breakerHalfOpen {
		b.st = breakerOpen
		b.retryAt = time.Now().Add(b.openFor)
		b.probing = false
		return
	}

	b.fails++
	if b.fails >= b.failThreshold {
		b.st = breakerOpen
		b.retryAt = time.Now().Add(b.openFor)
	}
}
