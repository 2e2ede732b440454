package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTime drives the gate with a manual clock; Sleep advances it instead
// of blocking so interval math can be asserted exactly.
type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{now: time.Unix(1_700_000_000, 0).UTC()}
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
	return nil
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestGate(interval time.Duration) (*Gate, *fakeTime) {
	ft := newFakeTime()
	g := New(interval)
	g.Clock = ft.Now
	g.Sleep = ft.Sleep
	return g, ft
}

func TestGateFirstAcquireImmediate(t *testing.T) {
	g, ft := newTestGate(8 * time.Second)

	start := ft.Now()
	permit, err := g.Acquire(context.Background())
	require.NoError(t, err)
	defer permit.Release()

	require.Equal(t, start, ft.Now(), "first acquire should not wait")
	require.Equal(t, start, g.LastCallAt())
}

func TestGateEnforcesMinimumSpacing(t *testing.T) {
	const interval = 8 * time.Second
	g, _ := newTestGate(interval)

	var starts []time.Time
	for i := 0; i < 4; i++ {
		permit, err := g.Acquire(context.Background())
		require.NoError(t, err)
		starts = append(starts, g.LastCallAt())
		permit.Release()
	}

	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		require.GreaterOrEqual(t, gap, interval, "calls %d and %d too close", i-1, i)
	}
}

func TestGateNoWaitAfterIdlePeriod(t *testing.T) {
	const interval = 8 * time.Second
	g, ft := newTestGate(interval)

	permit, err := g.Acquire(context.Background())
	require.NoError(t, err)
	permit.Release()

	// Enough real time already passed; the next caller goes straight through.
	ft.Advance(interval + time.Second)
	before := ft.Now()

	permit, err = g.Acquire(context.Background())
	require.NoError(t, err)
	defer permit.Release()

	require.Equal(t, before, ft.Now(), "idle gate should not sleep")
}

func TestGateSerializesHolders(t *testing.T) {
	g, _ := newTestGate(0)

	permit, err := g.Acquire(context.Background())
	require.NoError(t, err)

	second := make(chan struct{})
	go func() {
		p, err := g.Acquire(context.Background())
		if err == nil {
			p.Release()
		}
		close(second)
	}()

	select {
	case <-second:
		t.Fatal("second acquire completed while permit was held")
	case <-time.After(50 * time.Millisecond):
	}

	permit.Release()

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}

func TestGateAcquireCancelledWhileQueued(t *testing.T) {
	g, _ := newTestGate(8 * time.Second)

	permit, err := g.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)

	recorded := g.LastCallAt()
	permit.Release()

	// A cancelled caller must not move the timestamp or wedge the slot.
	require.Equal(t, recorded, g.LastCallAt())

	permit, err = g.Acquire(context.Background())
	require.NoError(t, err)
	permit.Release()
}

func TestGateAcquireCancelledDuringWait(t *testing.T) {
	g, _ := newTestGate(8 * time.Second)
	g.Sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	permit, err := g.Acquire(context.Background())
	require.NoError(t, err)
	recorded := g.LastCallAt()
	permit.Release()

	_, err = g.Acquire(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, recorded, g.LastCallAt(), "aborted wait must not record a call")

	// Slot must be free again for the next caller.
	g.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	permit, err = g.Acquire(context.Background())
	require.NoError(t, err)
	permit.Release()
}

func TestPermitReleaseIdempotent(t *testing.T) {
	g, _ := newTestGate(0)

	permit, err := g.Acquire(context.Background())
	require.NoError(t, err)

	permit.Release()
	permit.Release()

	permit, err = g.Acquire(context.Background())
	require.NoError(t, err)
	permit.Release()
}

func TestGateNilSafety(t *testing.T) {
	var g *Gate
	require.True(t, g.LastCallAt().IsZero())

	var p *Permit
	p.Release()
}
