package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireloop/sessiongate/internal/domain"
)

type fakeStore struct {
	interviews map[domain.InterviewID]*domain.Interview
	calls      int
}

func (s *fakeStore) GetInterview(_ context.Context, id domain.InterviewID) (*domain.Interview, error) {
	s.calls++
	iv, ok := s.interviews[id]
	if !ok {
		return nil, domain.ErrInterviewNotFound
	}
	cp := *iv
	return &cp, nil
}

func testInterview(start, end time.Time) *domain.Interview {
	return &domain.Interview{
		ID:            7,
		HRID:          1,
		InterviewerID: 2,
		IntervieweeID: 3,
		StartTime:     start,
		EndTime:       end,
		Status:        domain.StatusScheduled,
	}
}

func TestAuthorize_Participants(t *testing.T) {
	start := time.Now()
	store := &fakeStore{interviews: map[domain.InterviewID]*domain.Interview{
		7: testInterview(start, start.Add(time.Hour)),
	}}
	a := NewAuthorizer(store, DefaultBuffer)

	tests := []struct {
		name    string
		who     domain.Identity
		wantErr error
	}{
		{"hr seat", domain.Identity{ID: 1, Role: domain.RoleHR}, nil},
		{"interviewer seat", domain.Identity{ID: 2, Role: domain.RoleInterviewer}, nil},
		{"interviewee seat", domain.Identity{ID: 3, Role: domain.RoleInterviewee}, nil},
		{"stranger", domain.Identity{ID: 9, Role: domain.RoleInterviewer}, domain.ErrNotParticipant},
		{"stranger with hr role", domain.Identity{ID: 9, Role: domain.RoleHR}, domain.ErrNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authorize(context.Background(), tt.who, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authorize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorize_MissingRoom(t *testing.T) {
	a := NewAuthorizer(&fakeStore{interviews: map[domain.InterviewID]*domain.Interview{}}, DefaultBuffer)

	_, err := a.Authorize(context.Background(), domain.Identity{ID: 1}, 404)
	if !errors.Is(err, domain.ErrInterviewNotFound) {
		t.Errorf("Authorize() error = %v, want ErrInterviewNotFound", err)
	}
}

func TestAuthorize_SoftDeletedRoom(t *testing.T) {
	start := time.Now()
	iv := testInterview(start, start.Add(time.Hour))
	deleted := start.Add(-time.Hour)
	iv.DeletedAt = &deleted
	a := NewAuthorizer(&fakeStore{interviews: map[domain.InterviewID]*domain.Interview{7: iv}}, DefaultBuffer)

	_, err := a.Authorize(context.Background(), domain.Identity{ID: 1}, 7)
	if !errors.Is(err, domain.ErrInterviewNotFound) {
		t.Errorf("Authorize() error = %v, want ErrInterviewNotFound for soft-deleted row", err)
	}
}

func TestAuthorizeTimed_BufferBoundaries(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	store := &fakeStore{interviews: map[domain.InterviewID]*domain.Interview{
		7: testInterview(start, end),
	}}
	a := NewAuthorizer(store, DefaultBuffer)
	who := domain.Identity{ID: 2, Role: domain.RoleInterviewer}

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"31m before start", start.Add(-31 * time.Minute), domain.ErrNotStarted},
		{"29m before start", start.Add(-29 * time.Minute), nil},
		{"mid interview", start.Add(30 * time.Minute), nil},
		{"29m after end", end.Add(29 * time.Minute), nil},
		{"31m after end", end.Add(31 * time.Minute), domain.ErrFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.now = func() time.Time { return tt.now }
			_, err := a.AuthorizeTimed(context.Background(), who, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AuthorizeTimed() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorize_RefetchesEveryCall(t *testing.T) {
	start := time.Now()
	store := &fakeStore{interviews: map[domain.InterviewID]*domain.Interview{
		7: testInterview(start, start.Add(time.Hour)),
	}}
	a := NewAuthorizer(store, DefaultBuffer)
	who := domain.Identity{ID: 2}

	for i := 0; i < 3; i++ {
		if _, err := a.Authorize(context.Background(), who, 7); err != nil {
			t.Fatalf("Authorize() error = %v", err)
		}
	}
	if store.calls != 3 {
		t.Errorf("store calls = %d, want 3 (no snapshot caching)", store.calls)
	}
}
