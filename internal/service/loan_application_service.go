package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/events"
	"github.com/spec-kit/loan-service/internal/observability"
	"github.com/spec-kit/loan-service/internal/repository"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// LoanApplicationService drives the loan application lifecycle.
//
// Every guarded operation loads the application, checks who is asking, checks
// the current status and then writes conditionally on that status. When the
// conditional write matches no row the application changed underneath us and
// the caller gets an invalid-state error naming the status it now has.
type LoanApplicationService struct {
	apps       repository.LoanApplicationRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// LoanApplicationDependencies bundles collaborators for the service.
type LoanApplicationDependencies struct {
	LoanApplicationRepo repository.LoanApplicationRepository
	Dispatcher          events.Dispatcher
	Metrics             *observability.Metrics
	Logger              *zap.Logger
}

// LoanApplicationInput holds the customer-editable fields.
type LoanApplicationInput struct {
	Amount     float64
	TermMonths int
	Purpose    string
}

// NewLoanApplicationService builds the service.
func NewLoanApplicationService(deps LoanApplicationDependencies) *LoanApplicationService {
	return &LoanApplicationService{
		apps:       deps.LoanApplicationRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Create stores a new Pending application owned by the caller.
func (s *LoanApplicationService) Create(ctx context.Context, access auth.AccessContext, in LoanApplicationInput) (*domain.LoanApplication, error) {
	in, err := validateLoanApplicationInput(in)
	if err != nil {
		return nil, err
	}

	app := &domain.LoanApplication{
		UserID:     access.UserID,
		Amount:     in.Amount,
		TermMonths: in.TermMonths,
		Purpose:    in.Purpose,
		Status:     domain.StatusPending,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}
	app.Notes = []domain.LoanApplicationNote{}

	s.publish(ctx, events.EventLoanApplicationCreated, access, app.ID, events.StatusChangedPayload{
		OwnerID:   app.UserID,
		NewStatus: domain.StatusPending,
	})
	return app, nil
}

// List returns every application to admins and the caller's own otherwise.
func (s *LoanApplicationService) List(ctx context.Context, access auth.AccessContext) ([]domain.LoanApplication, error) {
	if access.IsAdmin() {
		return s.apps.ListAll(ctx)
	}
	return s.apps.ListByUser(ctx, access.UserID)
}

// Get returns one application with its notes.
func (s *LoanApplicationService) Get(ctx context.Context, access auth.AccessContext, id int64) (*domain.LoanApplication, error) {
	app, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsAdmin() && !app.OwnedBy(access.UserID) {
		return nil, apperrors.NewForbidden("loan application belongs to another user")
	}

	notes, err := s.apps.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Notes = notes
	return app, nil
}

// Update overwrites amount, term and purpose while the application is Pending.
func (s *LoanApplicationService) Update(ctx context.Context, access auth.AccessContext, id int64, in LoanApplicationInput) (*domain.LoanApplication, error) {
	in, err := validateLoanApplicationInput(in)
	if err != nil {
		return nil, err
	}

	app, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.OwnedBy(access.UserID) {
		return nil, apperrors.NewForbidden("only the owner can edit a loan application")
	}
	if app.Status != domain.StatusPending {
		return nil, apperrors.NewInvalidState(domain.StatusPending.String(), app.Status.String())
	}

	app.Amount = in.Amount
	app.TermMonths = in.TermMonths
	app.Purpose = in.Purpose
	updated, err := s.apps.UpdateFields(ctx, app)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, s.staleState(ctx, id, domain.StatusPending)
	}
	return app, nil
}

// Submit moves an owner's application from Pending to Submitted.
func (s *LoanApplicationService) Submit(ctx context.Context, access auth.AccessContext, id int64) (*domain.LoanApplication, error) {
	return s.transition(ctx, access, id, domain.StatusSubmitted, func(app *domain.LoanApplication) error {
		if !app.OwnedBy(access.UserID) {
			return apperrors.NewForbidden("only the owner can submit a loan application")
		}
		return nil
	})
}

// Approve moves a Submitted application to Approved and triggers the owner notification.
func (s *LoanApplicationService) Approve(ctx context.Context, access auth.AccessContext, id int64) (*domain.LoanApplication, error) {
	return s.transition(ctx, access, id, domain.StatusApproved, requireAdmin(access))
}

// Reject moves a Submitted application to Rejected.
func (s *LoanApplicationService) Reject(ctx context.Context, access auth.AccessContext, id int64) (*domain.LoanApplication, error) {
	return s.transition(ctx, access, id, domain.StatusRejected, requireAdmin(access))
}

// AddNote appends a note from the owner or an admin.
func (s *LoanApplicationService) AddNote(ctx context.Context, access auth.AccessContext, id int64, content string) (*domain.LoanApplicationNote, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > domain.MaxNoteLength {
		return nil, apperrors.NewValidationError("invalid note", map[string]any{
			"content": "must be between 1 and 2000 characters",
		})
	}

	app, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsAdmin() && !app.OwnedBy(access.UserID) {
		return nil, apperrors.NewForbidden("loan application belongs to another user")
	}

	note := &domain.LoanApplicationNote{
		LoanApplicationID: id,
		SenderID:          access.UserID,
		Content:           content,
		IsFromAdmin:       access.IsAdmin(),
	}
	if err := s.apps.AddNote(ctx, note); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventLoanApplicationNoteAdded, access, id, events.NoteAddedPayload{
		NoteID:      note.ID,
		OwnerID:     app.UserID,
		IsFromAdmin: note.IsFromAdmin,
	})
	return note, nil
}

func (s *LoanApplicationService) transition(
	ctx context.Context,
	access auth.AccessContext,
	id int64,
	to domain.LoanApplicationStatus,
	authorize func(*domain.LoanApplication) error,
) (*domain.LoanApplication, error) {
	from, ok := domain.RequiredPriorStatus(to)
	if !ok {
		return nil, apperrors.NewValidationError("unsupported status transition", map[string]any{"status": to.String()})
	}

	app, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(app); err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(to) {
		return nil, apperrors.NewInvalidState(from.String(), app.Status.String())
	}

	changed, err := s.apps.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, s.staleState(ctx, id, from)
	}

	app.Status = to
	s.metrics.RecordTransition(to.String())
	s.logger.Info("loan application status changed",
		zap.Int64("loan_application_id", id),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int64("actor_id", access.UserID),
	)

	s.publish(ctx, transitionEvent(to), access, id, events.StatusChangedPayload{
		OwnerID:   app.UserID,
		OldStatus: from,
		NewStatus: to,
	})
	return app, nil
}

func (s *LoanApplicationService) fetch(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("loan application", map[string]any{"id": id})
		}
		return nil, err
	}
	return app, nil
}

// staleState reports a lost conditional write using the status now stored.
func (s *LoanApplicationService) staleState(ctx context.Context, id int64, expected domain.LoanApplicationStatus) error {
	current, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	return apperrors.NewInvalidState(expected.String(), current.Status.String())
}

func (s *LoanApplicationService) publish(ctx context.Context, eventType events.EventType, access auth.AccessContext, id int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, id, events.Actor{UserID: access.UserID, Role: access.Role}, payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("loan_application_id", id),
			zap.Error(err),
		)
	}
}

func transitionEvent(to domain.LoanApplicationStatus) events.EventType {
	switch to {
	case domain.StatusApproved:
		return events.EventLoanApplicationApproved
	case domain.StatusRejected:
		return events.EventLoanApplicationRejected
	default:
		return events.EventLoanApplicationSubmitted
	}
}

func requireAdmin(access auth.AccessContext) func(*domain.LoanApplication) error {
	return func(*domain.LoanApplication) error {
		if !access.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return nil
	}
}

func validateLoanApplicationInput(in LoanApplicationInput) (LoanApplicationInput, error) {
	in.Purpose = strings.TrimSpace(in.Purpose)
	details := map[string]any{}
	if in.Amount <= 0 {
		details["amount"] = "must be greater than 0"
	}
	if in.TermMonths <= 0 {
		details["termMonths"] = "must be greater than 0"
	}
	if n := utf8.RuneCountInString(in.Purpose); n == 0 || n > domain.MaxPurposeLength {
		details["purpose"] = "must be between 1 and 500 characters"
	}
	if len(details) > 0 {
		return in, apperrors.NewValidationError("invalid loan application", details)
	}
	return in, nil
}
