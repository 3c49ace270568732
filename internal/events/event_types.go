package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/loan-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoanApplicationCreated   EventType = "loan_application.created"
	EventLoanApplicationSubmitted EventType = "loan_application.submitted"
	EventLoanApplicationApproved  EventType = "loan_application.approved"
	EventLoanApplicationRejected  EventType = "loan_application.rejected"
	EventLoanApplicationNoteAdded EventType = "loan_application.note_added"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID int64           `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID                string    `json:"id"`
	Type              EventType `json:"type"`
	LoanApplicationID int64     `json:"loan_application_id"`
	Actor             Actor     `json:"actor"`
	Timestamp         time.Time `json:"timestamp"`
	Payload           any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, loanApplicationID int64, actor Actor, payload any) Event {
	return Event{
		ID:                uuid.NewString(),
		Type:              eventType,
		LoanApplicationID: loanApplicationID,
		Actor:             actor,
		Timestamp:         time.Now().UTC(),
		Payload:           payload,
	}
}

// StatusChangedPayload accompanies submitted/approved/rejected events.
type StatusChangedPayload struct {
	OwnerID   int64                        `json:"owner_id"`
	OldStatus domain.LoanApplicationStatus `json:"old_status"`
	NewStatus domain.LoanApplicationStatus `json:"new_status"`
}

// NoteAddedPayload accompanies note_added events.
type NoteAddedPayload struct {
	NoteID      int64 `json:"note_id"`
	OwnerID     int64 `json:"owner_id"`
	IsFromAdmin bool  `json:"is_from_admin"`
}
