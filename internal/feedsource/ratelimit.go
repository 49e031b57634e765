package feedsource

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a per-host request rate across all concurrent
// pollers, so a burst of groups sharing one upstream publisher doesn't
// hammer it the moment the scheduler fans out (spec.md §4.F
// "Bounded concurrency" plus the politeness contract implied by
// respecting a single installation's User-Agent).
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewHostLimiter returns a limiter allowing rps requests per second
// (with the given burst) to any single host.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.rps, h.burst)
		h.limiters[host] = l
	}
	return l
}

// Wait blocks until a request to href's host is allowed to proceed, or
// ctx is cancelled.
func (h *HostLimiter) Wait(ctx context.Context, href string) error {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return nil
	}
	return h.limiterFor(u.Host).Wait(ctx)
}
