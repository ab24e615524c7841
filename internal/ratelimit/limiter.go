package ratelimit

import (
	"math/rand"
	"time"
)

// Default limiter configuration, overridable via RATE_LIMIT_WINDOW_MS and
// RATE_LIMIT_MAX_REQUESTS.
const (
	DefaultWindow      = 15 * time.Minute
	DefaultMaxRequests = 3

	// sweepProbability is the per-check chance of running a store-wide prune.
	// Best effort, not guaranteed-timely.
	sweepProbability = 0.01
)

// Result is the outcome of one limiter check. Limit/Remaining/Reset populate
// the informational X-RateLimit-* headers on every gated response; RetryAfter
// is meaningful only when Allowed is false.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// Limiter is a sliding-window log rate limiter keyed by client identifier.
// Safe for concurrent use when backed by a concurrent Store. Two racing
// requests from the same client can each observe "allowed" at the boundary;
// that is an accepted race under light contention and never corrupts the
// store.
type Limiter struct {
	store  Store
	window time.Duration
	max    int

	now  func() time.Time
	rand func() float64
}

// NewLimiter builds a Limiter over store. Non-positive window or max fall
// back to the defaults rather than producing a limiter that rejects or
// admits everything.
func NewLimiter(store Store, window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}
	return &Limiter{
		store:  store,
		window: window,
		max:    max,
		now:    time.Now,
		rand:   rand.Float64,
	}
}

// Check records a request attempt for clientID and reports whether it is
// admitted. On admission the current timestamp joins the client's window; on
// rejection the log is left untouched and RetryAfter is computed from the
// oldest in-window timestamp.
func (l *Limiter) Check(clientID string) Result {
	now := l.now()
	nowMS := now.UnixMilli()
	windowMS := l.window.Milliseconds()
	cutoff := nowMS - windowMS

	recent := keepRecent(l.store.Get(clientID), cutoff)

	if len(recent) >= l.max {
		oldest := recent[0]
		reset := time.UnixMilli(oldest + windowMS)
		retry := reset.Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		l.store.Put(clientID, recent)
		l.maybeSweep(cutoff)
		return Result{
			Allowed:    false,
			Limit:      l.max,
			Remaining:  0,
			Reset:      reset,
			RetryAfter: retry,
		}
	}

	recent = append(recent, nowMS)
	l.store.Put(clientID, recent)
	l.maybeSweep(cutoff)

	return Result{
		Allowed:   true,
		Limit:     l.max,
		Remaining: l.max - len(recent),
		Reset:     time.UnixMilli(nowMS + windowMS),
	}
}

// Reset clears the window for clientID. Useful for tests and operator tooling.
func (l *Limiter) Reset(clientID string) {
	l.store.Delete(clientID)
}

// Status reports the current window occupancy for clientID without
// recording an attempt.
func (l *Limiter) Status(clientID string) (attempts, limit, remaining int) {
	cutoff := l.now().UnixMilli() - l.window.Milliseconds()
	recent := keepRecent(l.store.Get(clientID), cutoff)
	remaining = l.max - len(recent)
	if remaining < 0 {
		remaining = 0
	}
	return len(recent), l.max, remaining
}

// maybeSweep opportunistically prunes stale entries across the whole store
// on roughly one check in a hundred.
func (l *Limiter) maybeSweep(cutoff int64) {
	if l.rand() < sweepProbability {
		l.store.Prune(cutoff)
	}
}

// keepRecent filters ts down to timestamps at or after cutoff, preserving order.
func keepRecent(ts []int64, cutoff int64) []int64 {
	kept := ts[:0]
	for _, t := range ts {
		if t > cutoff {
			kept = append(kept, t)
		}
	}
	return kept
}
