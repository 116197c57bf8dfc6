// Package supersede tracks in-flight loads per scope so that a newer load
// cancels the one it replaces.
package supersede

import (
	"context"
	"sync"
)

// Tracker hands out one live ticket per scope. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	current map[string]*Ticket
	nextGen uint64
}

func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]*Ticket)}
}

// Ticket is one load within a scope.
type Ticket struct {
	tracker *Tracker
	scope   string
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
}

// Begin starts a load in scope, cancelling any earlier load in the same scope.
// The caller must call Done when the load finishes.
func (t *Tracker) Begin(parent context.Context, scope string) *Ticket {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextGen++
	tk := &Ticket{tracker: t, scope: scope, gen: t.nextGen, ctx: ctx, cancel: cancel}
	if prev, ok := t.current[scope]; ok {
		prev.cancel()
	}
	t.current[scope] = tk
	return tk
}

// Context is cancelled when the ticket is superseded or its parent ends.
func (tk *Ticket) Context() context.Context {
	return tk.ctx
}

// Superseded reports whether a newer load has started in the same scope.
func (tk *Ticket) Superseded() bool {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	cur, ok := tk.tracker.current[tk.scope]
	return !ok || cur.gen != tk.gen
}

// Done releases the ticket. It is a no-op for the scope when the ticket was
// already superseded.
func (tk *Ticket) Done() {
	tk.tracker.mu.Lock()
	if cur, ok := tk.tracker.current[tk.scope]; ok && cur.gen == tk.gen {
		delete(tk.tracker.current, tk.scope)
	}
	tk.tracker.mu.Unlock()
	tk.cancel()
}

// InFlight returns the number of scopes with a live load.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}
