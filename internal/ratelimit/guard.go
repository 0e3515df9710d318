package ratelimit

import (
	"context"
	"time"

	"exchangeapi/internal/logger"
)

// Counter is the storage behind Guard.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
}

// Guard throttles repeated authentication failures per client address and
// merchant id. A nil Guard, or one without a counter, never throttles.
// Counter errors are logged and the request is let through.
type Guard struct {
	counter Counter
	limit   int64
	window  time.Duration
	log     *logger.Logger
}

func NewGuard(counter Counter, limit int, window time.Duration, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{counter: counter, limit: int64(limit), window: window, log: log}
}

func (g *Guard) enabled() bool {
	return g != nil && g.counter != nil && g.limit > 0
}

// Exceeded reports whether the pair has used up its failure budget.
func (g *Guard) Exceeded(ctx context.Context, clientIP, merchantID string) bool {
	if !g.enabled() {
		return false
	}
	n, err := g.counter.Count(ctx, failureKey(clientIP, merchantID))
	if err != nil {
		g.log.Warn(ctx, "auth throttle lookup failed", err)
		return false
	}
	return n >= g.limit
}

// RecordFailure counts one failed authentication for the pair.
func (g *Guard) RecordFailure(ctx context.Context, clientIP, merchantID string) {
	if !g.enabled() {
		return
	}
	if _, err := g.counter.IncrWithTTL(ctx, failureKey(clientIP, merchantID), g.window); err != nil {
		g.log.Warn(ctx, "auth throttle update failed", err)
	}
}

func failureKey(clientIP, merchantID string) string {
	if merchantID == "" {
		merchantID = "-"
	}
	return buildKey("auth_fail", clientIP, merchantID)
}
