package gateway

import (
	"sync"
	"time"

	"github.com/hireloop/sessiongate/internal/domain"
)

// joinLimiter caps join attempts per user over a sliding window so a
// misbehaving client cannot hammer the interview store, which is hit
// on every attempt.
type joinLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	limit    int
	interval time.Duration
}

func newJoinLimiter(limit int, interval time.Duration) *joinLimiter {
	return &joinLimiter{
		history:  make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *joinLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	fresh := make([]time.Time, 0, len(rl.history[uid]))
	for _, t := range rl.history[uid] {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[uid] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[uid] = fresh
	return true
}
