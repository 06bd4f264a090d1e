package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hireloop/sessiongate/internal/domain"
	"github.com/hireloop/sessiongate/internal/track"
)

// SessionStore implements track.SessionStore on Postgres.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) OpenSession(ctx context.Context, who domain.Identity, room domain.InterviewID, conn domain.ConnID, joinedAt time.Time) (track.SessionID, error) {
	rec := SessionRecord{
		UserID:      int64(who.ID),
		Role:        string(who.Role),
		InterviewID: int64(room),
		ConnID:      string(conn),
		JoinedAt:    joinedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("open session: %w", err)
	}
	return track.SessionID(rec.ID), nil
}

func (s *SessionStore) CloseSession(ctx context.Context, id track.SessionID, leftAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&SessionRecord{}).
		Where("id = ? AND left_at IS NULL", uint(id)).
		Update("left_at", &leftAt).Error
	if err != nil {
		return fmt.Errorf("close session %d: %w", id, err)
	}
	return nil
}
