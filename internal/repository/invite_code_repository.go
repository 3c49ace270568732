package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/loan-service/internal/domain"
)

// InviteCodeRepository persists admin invitation codes.
type InviteCodeRepository interface {
	Create(ctx context.Context, invite *domain.InviteCode) error
	GetByEmail(ctx context.Context, email string) (*domain.InviteCode, error)
	// GetByCodeForUpdate locks the row until the surrounding transaction ends.
	GetByCodeForUpdate(ctx context.Context, code uuid.UUID) (*domain.InviteCode, error)
	// MarkUsed flips is_used exactly once; it returns pgx.ErrNoRows when the
	// code was already consumed.
	MarkUsed(ctx context.Context, id int64) error
}

type inviteCodeRepository struct {
	db DBTX
}

// NewInviteCodeRepository instantiates repository.
func NewInviteCodeRepository(db DBTX) InviteCodeRepository {
	return &inviteCodeRepository{db: db}
}

func (r *inviteCodeRepository) Create(ctx context.Context, invite *domain.InviteCode) error {
	const query = `
        INSERT INTO invite_codes (code, email)
        VALUES ($1, $2)
        RETURNING id, is_used, created_at`
	err := r.db.QueryRow(ctx, query, invite.Code, invite.Email).
		Scan(&invite.ID, &invite.IsUsed, &invite.CreatedAt)
	return translateWriteError(err)
}

func (r *inviteCodeRepository) GetByEmail(ctx context.Context, email string) (*domain.InviteCode, error) {
	const query = `
        SELECT id, code, email, is_used, created_at
        FROM invite_codes WHERE LOWER(email)=LOWER($1)`
	return scanInviteCode(r.db.QueryRow(ctx, query, email))
}

func (r *inviteCodeRepository) GetByCodeForUpdate(ctx context.Context, code uuid.UUID) (*domain.InviteCode, error) {
	const query = `
        SELECT id, code, email, is_used, created_at
        FROM invite_codes WHERE code=$1
        FOR UPDATE`
	return scanInviteCode(r.db.QueryRow(ctx, query, code))
}

func (r *inviteCodeRepository) MarkUsed(ctx context.Context, id int64) error {
	const query = `UPDATE invite_codes SET is_used=TRUE WHERE id=$1 AND is_used=FALSE`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanInviteCode(row pgx.Row) (*domain.InviteCode, error) {
	var invite domain.InviteCode
	if err := row.Scan(
		&invite.ID,
		&invite.Code,
		&invite.Email,
		&invite.IsUsed,
		&invite.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &invite, nil
}
