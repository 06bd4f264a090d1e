package domain

import "time"

type InterviewStatus string

const (
	StatusPending          InterviewStatus = "PENDING"
	StatusScheduled        InterviewStatus = "SCHEDULED"
	StatusCompleted        InterviewStatus = "COMPLETED"
	StatusCancelled        InterviewStatus = "CANCELLED"
	StatusMovedToNextRound InterviewStatus = "MOVED_TO_NEXT_ROUND"
)

// Interview is a read-only snapshot of one scheduled interview.
// The core fetches it per join attempt and never mutates it; the
// CRUD surface owns its lifecycle.
type Interview struct {
	ID            InterviewID
	HRID          UserID
	InterviewerID UserID
	IntervieweeID UserID
	StartTime     time.Time
	EndTime       time.Time
	Status        InterviewStatus
	Round         int

	InterviewerAccepted bool
	IntervieweeAccepted bool

	DeletedAt *time.Time
}

// IsParticipant reports whether uid holds one of the three seats.
func (iv *Interview) IsParticipant(uid UserID) bool {
	return uid == iv.HRID || uid == iv.InterviewerID || uid == iv.IntervieweeID
}

func (iv *Interview) Deleted() bool { return iv.DeletedAt != nil }
