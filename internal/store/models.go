package store

import (
	"time"

	"github.com/hireloop/sessiongate/internal/domain"
)

// Interview mirrors the row shape the CRUD surface writes. Read-only
// here.
type Interview struct {
	ID            int64     `gorm:"primaryKey"`
	HRID          int64     `gorm:"column:hr_id;not null"`
	InterviewerID int64     `gorm:"not null"`
	IntervieweeID int64     `gorm:"not null"`
	StartTime     time.Time `gorm:"not null"`
	EndTime       time.Time `gorm:"not null"`
	Status        string    `gorm:"size:32;not null"`
	Round         int       `gorm:"default:1"`

	InterviewerAccepted bool
	IntervieweeAccepted bool

	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Interview) TableName() string { return "interviews" }

func (m *Interview) toDomain() *domain.Interview {
	return &domain.Interview{
		ID:                  domain.InterviewID(m.ID),
		HRID:                domain.UserID(m.HRID),
		InterviewerID:       domain.UserID(m.InterviewerID),
		IntervieweeID:       domain.UserID(m.IntervieweeID),
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		Status:              domain.InterviewStatus(m.Status),
		Round:               m.Round,
		InterviewerAccepted: m.InterviewerAccepted,
		IntervieweeAccepted: m.IntervieweeAccepted,
		DeletedAt:           m.DeletedAt,
	}
}

// SessionRecord is the durable trail of one join-to-leave span.
// Rows are inserted on join, updated exactly once on leave, never
// deleted.
type SessionRecord struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      int64  `gorm:"index;not null"`
	Role        string `gorm:"size:16"`
	InterviewID int64  `gorm:"index:idx_session_interview;not null"`
	ConnID      string `gorm:"size:64;not null"`
	JoinedAt    time.Time
	LeftAt      *time.Time
}
