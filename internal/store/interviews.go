package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hireloop/sessiongate/internal/domain"
)

// InterviewStore reads interview snapshots for the authorizer. Every
// call hits the database: interview state is mutated by the CRUD
// surface concurrently with live sessions, so snapshots must not be
// cached across join attempts.
type InterviewStore struct {
	db *gorm.DB
}

func NewInterviewStore(db *gorm.DB) *InterviewStore {
	return &InterviewStore{db: db}
}

func (s *InterviewStore) GetInterview(ctx context.Context, id domain.InterviewID) (*domain.Interview, error) {
	var row Interview
	err := s.db.WithContext(ctx).First(&row, int64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch interview %d: %w", id, err)
	}
	return row.toDomain(), nil
}
