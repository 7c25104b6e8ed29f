package metrics

import (
	"sync/atomic"
	"time"
)

// Collector holds process-wide request and auth counters for /metrics.
type Collector struct {
	totalRequests   uint64
	clientErrors    uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	loginSuccess    uint64
	loginFailure    uint64
	sessionsExpired uint64
	startedAt       time.Time
}

func New() *Collector {
	return &Collector{startedAt: time.Now()}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status == 429:
		atomic.AddUint64(&c.rateLimited, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordLogin(ok bool) {
	if ok {
		atomic.AddUint64(&c.loginSuccess, 1)
		return
	}
	atomic.AddUint64(&c.loginFailure, 1)
}

func (c *Collector) RecordSessionExpired() {
	atomic.AddUint64(&c.sessionsExpired, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"clientErrorsTotal":    atomic.LoadUint64(&c.clientErrors),
		"errorsTotal":          atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":     atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
		"loginSuccessTotal":    atomic.LoadUint64(&c.loginSuccess),
		"loginFailureTotal":    atomic.LoadUint64(&c.loginFailure),
		"sessionsExpiredTotal": atomic.LoadUint64(&c.sessionsExpired),
		"uptimeSeconds":        int64(time.Since(c.startedAt).Seconds()),
	}
}
