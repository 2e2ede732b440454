// Package gate serializes upstream calls behind a global minimum-interval
// throttle. The provider penalizes bursts, so the gate is a mutual-exclusion
// section covering both the wait and the call itself: at most one caller
// holds a permit at a time, and no two permits are granted less than the
// configured interval apart.
package gate

import (
	"context"
	"time"
)

// Gate enforces a minimum wall-clock interval between the starts of any two
// upstream calls, process-wide. Callers queue FIFO-ish on the single slot;
// there is no fairness beyond that and no per-key state.
type Gate struct {
	// Interval is the minimum spacing between granted call starts.
	Interval time.Duration

	// Clock reports the current time; overridable for tests.
	Clock func() time.Time

	// Sleep waits out the remaining interval; overridable for tests. It
	// must return ctx.Err() if the context is cancelled first.
	Sleep func(ctx context.Context, d time.Duration) error

	slot chan struct{}
	last time.Time
}

// Permit represents exclusive ownership of the gate. Release it after the
// upstream call returns, whatever the outcome.
type Permit struct {
	gate     *Gate
	released bool
}

// New creates a gate with the given minimum interval.
func New(interval time.Duration) *Gate {
	return &Gate{
		Interval: interval,
		slot:     make(chan struct{}, 1),
	}
}

// Acquire blocks until the slot is free and at least Interval has elapsed
// since the start of the last granted call, then records the new call's
// start time and returns a permit. A caller cancelled while queued, or while
// waiting out the interval, is released without consuming the slot or
// touching the timestamp.
func (g *Gate) Acquire(ctx context.Context) (*Permit, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// last is only touched while the slot is held.
	if !g.last.IsZero() {
		if wait := g.Interval - g.now().Sub(g.last); wait > 0 {
			if err := g.sleep(ctx, wait); err != nil {
				<-g.slot
				return nil, err
			}
		}
	}

	g.last = g.now()
	return &Permit{gate: g}, nil
}

// LastCallAt reports the start time of the most recently granted call. It is
// advisory (read without the slot) and intended for health/stats surfaces.
func (g *Gate) LastCallAt() time.Time {
	if g == nil {
		return time.Time{}
	}
	return g.last
}

// Release frees the gate slot. Safe to call more than once.
func (p *Permit) Release() {
	if p == nil || p.gate == nil || p.released {
		return
	}
	p.released = true
	<-p.gate.slot
}

func (g *Gate) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now().UTC()
}

func (g *Gate) sleep(ctx context.Context, d time.Duration) error {
	if g != nil && g.Sleep != nil {
		return g.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
