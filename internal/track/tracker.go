// Package track persists join-to-leave session spans for audit/history.
package track

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/domain"
)

type SessionID uint

// SessionStore is the durable backend for session spans.
type SessionStore interface {
	OpenSession(ctx context.Context, who domain.Identity, room domain.InterviewID, conn domain.ConnID, joinedAt time.Time) (SessionID, error)
	CloseSession(ctx context.Context, id SessionID, leftAt time.Time) error
}

// Tracker records one span per (connection, join) event. Records are
// never deleted; a rejoin produces a second record.
type Tracker struct {
	store SessionStore
	now   func() time.Time
}

func NewTracker(store SessionStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Open creates the durable record for an accepted join. Failure here
// aborts the join, so the caller gets the error.
func (t *Tracker) Open(ctx context.Context, who domain.Identity, room domain.InterviewID, conn domain.ConnID) (SessionID, error) {
	id, err := t.store.OpenSession(ctx, who, room, conn, t.now())
	if err != nil {
		return 0, err
	}
	log.Info().Str("module", "track").Uint("session", uint(id)).Int64("user", int64(who.ID)).Int64("room", int64(room)).Msg("session opened")
	return id, nil
}

// Close stamps the leave time. A store failure is logged and swallowed:
// a broken write must never block connection teardown.
func (t *Tracker) Close(ctx context.Context, id SessionID) {
	if err := t.store.CloseSession(ctx, id, t.now()); err != nil {
		log.Error().Err(err).Str("module", "track").Uint("session", uint(id)).Msg("failed to close session record")
		return
	}
	log.Info().Str("module", "track").Uint("session", uint(id)).Msg("session closed")
}
