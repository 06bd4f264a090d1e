// Package presence enforces at-most-one live connection per user.
package presence

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/domain"
)

// Registry is in-memory, process-wide state. A multi-instance
// deployment needs a shared registry instead; presence assumes a
// single authoritative process.
type Registry struct {
	mu   sync.Mutex
	live map[domain.UserID]domain.ConnID
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[domain.UserID]domain.ConnID)}
}

// Acquire records conn as the sole live connection for user. If a
// different connection already held the slot its id is returned so the
// gateway can send it a force-disconnect and close it.
func (r *Registry) Acquire(user domain.UserID, conn domain.ConnID) (evicted domain.ConnID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, exists := r.live[user]
	r.live[user] = conn
	if exists && prev != conn {
		log.Info().Str("module", "presence").Int64("user", int64(user)).Str("old_conn", string(prev)).Str("new_conn", string(conn)).Msg("superseding live connection")
		return prev, true
	}
	return "", false
}

// Release removes the entry only if it still points at conn. A release
// racing a newer Acquire for the same user is a no-op.
func (r *Registry) Release(user domain.UserID, conn domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.live[user]; ok && cur == conn {
		delete(r.live, user)
		return true
	}
	return false
}

// Lookup reports the live connection for user, if any.
func (r *Registry) Lookup(user domain.UserID) (domain.ConnID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.live[user]
	return conn, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
