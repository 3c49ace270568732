package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/loan-service/internal/domain"
)

// LoanApplicationRepository encapsulates loan application persistence.
// Status changes are conditional on the expected prior status; a false
// result means another writer got there first or the guard did not hold.
type LoanApplicationRepository interface {
	Create(ctx context.Context, app *domain.LoanApplication) error
	GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error)
	ListAll(ctx context.Context) ([]domain.LoanApplication, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.LoanApplication, error)
	UpdateFields(ctx context.Context, app *domain.LoanApplication) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.LoanApplicationStatus) (bool, error)
	AggregateByStatus(ctx context.Context, start, end time.Time) ([]domain.StatusAggregate, error)
	AddNote(ctx context.Context, note *domain.LoanApplicationNote) error
	ListNotes(ctx context.Context, loanApplicationID int64) ([]domain.LoanApplicationNote, error)
}

type loanApplicationRepository struct {
	db DBTX
}

// NewLoanApplicationRepository instantiates repository.
func NewLoanApplicationRepository(db DBTX) LoanApplicationRepository {
	return &loanApplicationRepository{db: db}
}

const loanApplicationColumns = `id, user_id, amount, term_months, purpose, status, applied_at`

func (r *loanApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	const query = `
        INSERT INTO loan_applications (user_id, amount, term_months, purpose, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, applied_at`
	return r.db.QueryRow(ctx, query,
		app.UserID,
		app.Amount,
		app.TermMonths,
		app.Purpose,
		int16(app.Status),
	).Scan(&app.ID, &app.AppliedAt)
}

func (r *loanApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	query := `SELECT ` + loanApplicationColumns + ` FROM loan_applications WHERE id=$1`
	return scanLoanApplication(r.db.QueryRow(ctx, query, id))
}

func (r *loanApplicationRepository) ListAll(ctx context.Context) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanApplicationColumns + ` FROM loan_applications ORDER BY applied_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoanApplications(rows)
}

func (r *loanApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanApplicationColumns + ` FROM loan_applications WHERE user_id=$1 ORDER BY applied_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoanApplications(rows)
}

func (r *loanApplicationRepository) UpdateFields(ctx context.Context, app *domain.LoanApplication) (bool, error) {
	const query = `
        UPDATE loan_applications SET amount=$1, term_months=$2, purpose=$3
        WHERE id=$4 AND user_id=$5 AND status=$6`
	cmd, err := r.db.Exec(ctx, query,
		app.Amount,
		app.TermMonths,
		app.Purpose,
		app.ID,
		app.UserID,
		int16(domain.StatusPending),
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *loanApplicationRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.LoanApplicationStatus) (bool, error) {
	const query = `UPDATE loan_applications SET status=$1 WHERE id=$2 AND status=$3`
	cmd, err := r.db.Exec(ctx, query, int16(to), id, int16(from))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *loanApplicationRepository) AggregateByStatus(ctx context.Context, start, end time.Time) ([]domain.StatusAggregate, error) {
	const query = `
        SELECT status, COUNT(*), COALESCE(SUM(amount), 0)::float8
        FROM loan_applications
        WHERE applied_at BETWEEN $1 AND $2
        GROUP BY status`
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusAggregate
	for rows.Next() {
		var (
			status int16
			agg    domain.StatusAggregate
		)
		if err := rows.Scan(&status, &agg.Count, &agg.Amount); err != nil {
			return nil, err
		}
		agg.Status = domain.LoanApplicationStatus(status)
		result = append(result, agg)
	}
	return result, rows.Err()
}

func (r *loanApplicationRepository) AddNote(ctx context.Context, note *domain.LoanApplicationNote) error {
	const query = `
        INSERT INTO loan_application_notes (loan_application_id, sender_id, content, is_from_admin)
        VALUES ($1, $2, $3, $4)
        RETURNING id, sent_at`
	return r.db.QueryRow(ctx, query,
		note.LoanApplicationID,
		note.SenderID,
		note.Content,
		note.IsFromAdmin,
	).Scan(&note.ID, &note.SentAt)
}

func (r *loanApplicationRepository) ListNotes(ctx context.Context, loanApplicationID int64) ([]domain.LoanApplicationNote, error) {
	const query = `
        SELECT id, loan_application_id, sender_id, content, sent_at, is_from_admin
        FROM loan_application_notes
        WHERE loan_application_id=$1
        ORDER BY sent_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, loanApplicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []domain.LoanApplicationNote{}
	for rows.Next() {
		var note domain.LoanApplicationNote
		if err := rows.Scan(
			&note.ID,
			&note.LoanApplicationID,
			&note.SenderID,
			&note.Content,
			&note.SentAt,
			&note.IsFromAdmin,
		); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func scanLoanApplication(row pgx.Row) (*domain.LoanApplication, error) {
	var (
		app    domain.LoanApplication
		status int16
	)
	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Amount,
		&app.TermMonths,
		&app.Purpose,
		&status,
		&app.AppliedAt,
	); err != nil {
		return nil, err
	}
	app.Status = domain.LoanApplicationStatus(status)
	return &app, nil
}

func scanLoanApplications(rows pgx.Rows) ([]domain.LoanApplication, error) {
	result := []domain.LoanApplication{}
	for rows.Next() {
		app, err := scanLoanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}
