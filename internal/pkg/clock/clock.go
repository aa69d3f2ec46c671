// Package clock abstracts time so bonus cooldowns and presentation delays
// can be tested deterministically.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time and a context-aware sleep.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Real implements Clock using the standard time package.
type Real struct{}

// New returns the wall clock.
func New() Real {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

// Sleep waits for d or until ctx is done.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HoursSinceEpoch converts t to fractional hours since the Unix epoch.
func HoursSinceEpoch(t time.Time) float64 {
	return float64(t.UnixMilli()) / float64(time.Hour/time.Millisecond)
}

// Mock is a manually advanced clock for tests.
// Sleep advances the clock instead of blocking.
type Mock struct {
	mu      sync.Mutex
	current time.Time
	slept   []time.Duration
}

// NewMock creates a Mock starting at t.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Mock) Sleep(_ context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slept = append(m.slept, d)
	m.current = m.current.Add(d)
	return nil
}

// Advance moves the clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Slept returns every duration passed to Sleep.
func (m *Mock) Slept() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.slept...)
}
