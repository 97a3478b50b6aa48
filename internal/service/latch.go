package service

import (
	"sync"
	"sync/atomic"
)

// LatchState is the lifecycle of a one-shot action.
type LatchState int32

const (
	// LatchIdle means the action has not started.
	LatchIdle LatchState = iota
	// LatchTriggered means exactly one caller won the right to perform it.
	LatchTriggered
	// LatchDone means the action finished (successfully or not).
	LatchDone
)

// Latch guards a one-shot side effect such as a notification send. Only
// one caller can move it from idle to triggered; re-triggers are refused
// until Reset.
type Latch struct {
	state atomic.Int32
}

// Trigger attempts the idle -> triggered transition. Returns true for the
// single winner.
func (l *Latch) Trigger() bool {
	return l.state.CompareAndSwap(int32(LatchIdle), int32(LatchTriggered))
}

// Complete marks the triggered action finished.
func (l *Latch) Complete() {
	l.state.CompareAndSwap(int32(LatchTriggered), int32(LatchDone))
}

// State returns the current state.
func (l *Latch) State() LatchState {
	return LatchState(l.state.Load())
}

// Reset returns the latch to idle so the action may run again.
func (l *Latch) Reset() {
	l.state.Store(int32(LatchIdle))
}

// LatchRegistry hands out one latch per key, so repeated requests in the
// same session (user + form) share a single one-shot guard.
type LatchRegistry struct {
	mu sync.Mutex
	m  map[string]*Latch
}

// NewLatchRegistry creates an empty registry.
func NewLatchRegistry() *LatchRegistry {
	return &LatchRegistry{m: make(map[string]*Latch)}
}

// Get returns the latch for key, creating it on first use.
func (r *LatchRegistry) Get(key string) *Latch {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.m[key]
	if !ok {
		l = &Latch{}
		r.m[key] = l
	}
	return l
}
