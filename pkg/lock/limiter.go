package lock

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/taugate/kernel/pkg/taugate/types"
)

// LocalLimiter is an in-process, per-actor token-bucket limiter that
// needs no Redis backend or other distributed coordination. The taugate
// kernel does not call it.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[types.ActorId]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewLocalLimiter creates a limiter allowing rps requests per second
// per actor, with the given burst.
func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[types.ActorId]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether actor may proceed right now, consuming a token
// if so.
func (l *LocalLimiter) Allow(actor types.ActorId) bool {
	l.mu.Lock()
	lim, ok := l.limiters[actor]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[actor] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}
