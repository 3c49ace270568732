package domain

import (
	"fmt"
	"time"
)

// LoanApplicationStatus enumerates lifecycle states. Values match the
// SMALLINT check constraint on loan_applications.status.
type LoanApplicationStatus int16

const (
	StatusPending   LoanApplicationStatus = 1
	StatusSubmitted LoanApplicationStatus = 2
	StatusApproved  LoanApplicationStatus = 3
	StatusRejected  LoanApplicationStatus = 4
)

var statusNames = map[LoanApplicationStatus]string{
	StatusPending:   "Pending",
	StatusSubmitted: "Submitted",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
}

func (s LoanApplicationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("LoanApplicationStatus(%d)", int16(s))
}

// Valid reports whether s is a defined status.
func (s LoanApplicationStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// MarshalText renders the status by name.
func (s LoanApplicationStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid loan application status %d", int16(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *LoanApplicationStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseLoanApplicationStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseLoanApplicationStatus maps a status name to its value.
func ParseLoanApplicationStatus(name string) (LoanApplicationStatus, error) {
	for status, candidate := range statusNames {
		if candidate == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown loan application status %q", name)
}

var allowedTransitions = map[LoanApplicationStatus][]LoanApplicationStatus{
	StatusPending:   {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusApproved:  {},
	StatusRejected:  {},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s LoanApplicationStatus) CanTransitionTo(next LoanApplicationStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// RequiredPriorStatus returns the only status from which next can be reached.
func RequiredPriorStatus(next LoanApplicationStatus) (LoanApplicationStatus, bool) {
	for from, targets := range allowedTransitions {
		for _, to := range targets {
			if to == next {
				return from, true
			}
		}
	}
	return 0, false
}

// Limits enforced on loan application input.
const (
	MaxPurposeLength = 500
	MaxNoteLength    = 2000
)

// LoanApplication is the aggregate customers create and admins review.
type LoanApplication struct {
	ID         int64
	UserID     int64
	Amount     float64
	TermMonths int
	Purpose    string
	Status     LoanApplicationStatus
	AppliedAt  time.Time
	Notes      []LoanApplicationNote
}

// OwnedBy reports whether userID created the application.
func (a *LoanApplication) OwnedBy(userID int64) bool {
	return a != nil && a.UserID == userID
}

// LoanApplicationNote is an append-only message attached to an application.
type LoanApplicationNote struct {
	ID                int64
	LoanApplicationID int64
	SenderID          int64
	Content           string
	SentAt            time.Time
	IsFromAdmin       bool
}
