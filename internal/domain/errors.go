package domain

import "errors"

// Deny reasons surfaced to the client on a failed join or
// time-gated action. Wording follows the user-facing strings
// the interview CRUD surface already uses.
var (
	ErrInterviewNotFound = errors.New("interview not found")
	ErrNotParticipant    = errors.New("not a participant")
	ErrNotStarted        = errors.New("interview has not started yet")
	ErrFinished          = errors.New("interview has finished")
)
