// Package access decides whether an identity may act on an interview room.
package access

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hireloop/sessiongate/internal/domain"
)

// DefaultBuffer is the grace period on both sides of the scheduled window.
const DefaultBuffer = 30 * time.Minute

// InterviewStore is the external collaborator owning interview records.
// Implementations return domain.ErrInterviewNotFound for missing rows.
type InterviewStore interface {
	GetInterview(ctx context.Context, id domain.InterviewID) (*domain.Interview, error)
}

type Authorizer struct {
	store  InterviewStore
	buffer time.Duration
	now    func() time.Time
}

func NewAuthorizer(store InterviewStore, buffer time.Duration) *Authorizer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Authorizer{store: store, buffer: buffer, now: time.Now}
}

// Authorize checks that the room exists and that who is one of its
// participants. It re-fetches the interview on every call: the CRUD
// surface mutates interviews concurrently with live sessions, so a
// cached snapshot could admit a join into an ended interview.
func (a *Authorizer) Authorize(ctx context.Context, who domain.Identity, roomID domain.InterviewID) (*domain.Interview, error) {
	iv, err := a.store.GetInterview(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if iv.Deleted() {
		return nil, domain.ErrInterviewNotFound
	}
	if !iv.IsParticipant(who.ID) {
		log.Warn().Str("module", "access").Int64("user", int64(who.ID)).Int64("room", int64(roomID)).Msg("join denied: not a participant")
		return nil, domain.ErrNotParticipant
	}
	return iv, nil
}

// AuthorizeTimed additionally enforces the scheduled window with the
// configured buffer. It gates time-sensitive actions only; joining the
// video room itself goes through Authorize.
func (a *Authorizer) AuthorizeTimed(ctx context.Context, who domain.Identity, roomID domain.InterviewID) (*domain.Interview, error) {
	iv, err := a.Authorize(ctx, who, roomID)
	if err != nil {
		return nil, err
	}
	now := a.now()
	if now.Before(iv.StartTime.Add(-a.buffer)) {
		return nil, domain.ErrNotStarted
	}
	if now.After(iv.EndTime.Add(a.buffer)) {
		return nil, domain.ErrFinished
	}
	return iv, nil
}
