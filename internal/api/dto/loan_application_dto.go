package dto

import (
	"time"

	"github.com/spec-kit/loan-service/internal/domain"
)

// LoanApplicationRequest is the body for create and update.
type LoanApplicationRequest struct {
	Amount     float64 `json:"amount" validate:"gt=0"`
	TermMonths int     `json:"termMonths" validate:"gt=0"`
	Purpose    string  `json:"purpose" validate:"required,max=500"`
}

// NoteRequest is the body for adding a note.
type NoteRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// LoanApplicationResponse is the public view of an application.
type LoanApplicationResponse struct {
	LoanApplicationID int64                        `json:"loanApplicationId"`
	UserID            int64                        `json:"userId"`
	Amount            float64                      `json:"amount"`
	TermMonths        int                          `json:"termMonths"`
	Purpose           string                       `json:"purpose"`
	Status            domain.LoanApplicationStatus `json:"status"`
	DateApplied       time.Time                    `json:"dateApplied"`
	Notes             []NoteResponse               `json:"notes,omitempty"`
}

// NoteResponse is the public view of a note.
type NoteResponse struct {
	LoanApplicationNoteID int64     `json:"loanApplicationNoteId"`
	LoanApplicationID     int64     `json:"loanApplicationId"`
	SenderID              int64     `json:"senderId"`
	Content               string    `json:"content"`
	SentAt                time.Time `json:"sentAt"`
	IsFromAdmin           bool      `json:"isFromAdmin"`
}

func NewLoanApplicationResponse(app domain.LoanApplication) LoanApplicationResponse {
	resp := LoanApplicationResponse{
		LoanApplicationID: app.ID,
		UserID:            app.UserID,
		Amount:            app.Amount,
		TermMonths:        app.TermMonths,
		Purpose:           app.Purpose,
		Status:            app.Status,
		DateApplied:       app.AppliedAt,
	}
	if app.Notes != nil {
		resp.Notes = make([]NoteResponse, 0, len(app.Notes))
		for _, n := range app.Notes {
			resp.Notes = append(resp.Notes, NewNoteResponse(n))
		}
	}
	return resp
}

func NewLoanApplicationResponses(apps []domain.LoanApplication) []LoanApplicationResponse {
	out := make([]LoanApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewLoanApplicationResponse(app))
	}
	return out
}

func NewNoteResponse(n domain.LoanApplicationNote) NoteResponse {
	return NoteResponse{
		LoanApplicationNoteID: n.ID,
		LoanApplicationID:     n.LoanApplicationID,
		SenderID:              n.SenderID,
		Content:               n.Content,
		SentAt:                n.SentAt,
		IsFromAdmin:           n.IsFromAdmin,
	}
}
