// Package domain contains entities without logic, just meta-data.
package domain

type (
	UserID      int64
	InterviewID int64
	ConnID      string
)

type Role string

const (
	RoleHR          Role = "HR"
	RoleInterviewer Role = "INTERVIEWER"
	RoleInterviewee Role = "INTERVIEWEE"
)

type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountBlocked AccountStatus = "BLOCKED"
)

// Identity is the decoded result of a verified credential.
// Only id and role travel with a connection; everything else
// about the user stays in the identity store.
type Identity struct {
	ID   UserID `json:"id"`
	Role Role   `json:"role"`
}
