package supersede

import (
	"context"
	"sync"
	"testing"
)

func TestNewerLoadCancelsOlder(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()

	first := tr.Begin(ctx, "viewer-1:post")
	second := tr.Begin(ctx, "viewer-1:post")

	if first.Context().Err() == nil {
		t.Error("first ticket should be cancelled")
	}
	if !first.Superseded() {
		t.Error("first ticket should be superseded")
	}
	if second.Superseded() {
		t.Error("second ticket should be current")
	}
	if second.Context().Err() != nil {
		t.Error("second ticket should still be live")
	}

	// Finishing the stale ticket must not release the live one
	first.Done()
	if tr.InFlight() != 1 {
		t.Errorf("InFlight: got %d, want 1", tr.InFlight())
	}

	second.Done()
	if tr.InFlight() != 0 {
		t.Errorf("InFlight: got %d, want 0", tr.InFlight())
	}
}

func TestScopesAreIndependent(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()

	a := tr.Begin(ctx, "a")
	b := tr.Begin(ctx, "b")
	defer a.Done()
	defer b.Done()

	if a.Superseded() || b.Superseded() {
		t.Error("different scopes must not supersede each other")
	}
}

func TestParentCancellationPropagates(t *testing.T) {
	tr := NewTracker()
	ctx, cancel := context.WithCancel(context.Background())

	tk := tr.Begin(ctx, "a")
	defer tk.Done()
	cancel()

	if tk.Context().Err() == nil {
		t.Error("ticket context should follow parent")
	}
	if tk.Superseded() {
		t.Error("parent cancellation is not supersession")
	}
}

func TestConcurrentBeginLeavesOneCurrent(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()

	const n = 50
	tickets := make([]*Ticket, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tickets[i] = tr.Begin(ctx, "shared")
		}(i)
	}
	wg.Wait()

	live := 0
	for _, tk := range tickets {
		if !tk.Superseded() {
			live++
		}
	}
	if live != 1 {
		t.Errorf("live tickets: got %d, want 1", live)
	}
	for _, tk := range tickets {
		tk.Done()
	}
	if tr.InFlight() != 0 {
		t.Errorf("InFlight after Done: got %d", tr.InFlight())
	}
}
