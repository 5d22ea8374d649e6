package orchestration

// SettleTracker aggregates settle events into a running tally. Both the CLI
// spinner and tests use it so the counting logic lives in one place.
type SettleTracker struct {
	total     int
	settled   int
	succeeded int
	failed    int
}

// NewSettleTracker creates a tracker for total calls. Returns nil if total <= 0.
func NewSettleTracker(total int) *SettleTracker {
	if total <= 0 {
		return nil
	}
	return &SettleTracker{total: total}
}

// Progress is the tally after processing one settle event.
type Progress struct {
	// Event is the event that produced this tally.
	Event SettleEvent
	// Settled is the number of calls in a terminal state.
	Settled int
	// Succeeded is the number of settled calls that returned a value.
	Succeeded int
	// Failed is the number of settled calls that returned an error.
	Failed int
	// Total is the number of calls dispatched.
	Total int
}

// Fraction returns the settled share of the batch, from 0.0 to 1.0.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Settled) / float64(p.Total)
}

// Done reports whether every call has settled.
func (p Progress) Done() bool { return p.Settled >= p.Total }

// Update records one settle event and returns the new tally.
func (t *SettleTracker) Update(ev SettleEvent) Progress {
	if t.settled < t.total {
		t.settled++
		if ev.Err != nil {
			t.failed++
		} else {
			t.succeeded++
		}
	}
	return t.snapshot(ev)
}

// Snapshot returns the current tally without updating.
func (t *SettleTracker) Snapshot() Progress {
	return t.snapshot(SettleEvent{Index: -1})
}

func (t *SettleTracker) snapshot(ev SettleEvent) Progress {
	return Progress{
		Event:     ev,
		Settled:   t.settled,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Total:     t.total,
	}
}

// DrainChannel reads all events from the channel without processing.
func DrainChannel(events <-chan SettleEvent) {
	for range events {
	}
}
