package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/config"
	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/repository"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// UserService backs the admin user-management endpoints.
type UserService struct {
	users      repository.UserRepository
	invites    repository.InviteCodeRepository
	validate   *validator.Validate
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles repositories for the user service.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	InviteCodeRepo repository.InviteCodeRepository
	Logger         *zap.Logger
}

// UpdateUserInput carries an admin edit; a nil Password keeps the current one.
type UpdateUserInput struct {
	Email    string
	Role     domain.UserRole
	Password *string
}

// NewUserService builds the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		invites:    deps.InviteCodeRepo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		bcryptCost: cfg.BcryptCost,
		logger:     deps.Logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// CreateInvitation returns the outstanding invitation for email, creating
// one if none exists. Repeated calls return the same code until it is redeemed.
func (s *UserService) CreateInvitation(ctx context.Context, email string) (*domain.InviteCode, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.NewValidationError("a valid email is required", map[string]any{"email": "must be a valid email address"})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("a user with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	existing, err := s.outstandingInvite(ctx, email)
	if err != nil || existing != nil {
		return existing, err
	}

	invite := &domain.InviteCode{Code: uuid.New(), Email: email}
	if err := s.invites.Create(ctx, invite); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// Lost a race with a concurrent request for the same email.
		existing, err := s.outstandingInvite(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperrors.NewConflict("invitation already redeemed", nil)
		}
		return existing, nil
	}

	s.logger.Info("invitation created", zap.Int64("invite_id", invite.ID), zap.String("email", email))
	return invite, nil
}

func (s *UserService) outstandingInvite(ctx context.Context, email string) (*domain.InviteCode, error) {
	invite, err := s.invites.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	case invite.IsUsed:
		return nil, apperrors.NewConflict("invitation already redeemed", nil)
	}
	return invite, nil
}

// Update overwrites email and role, and the password when one is given.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	details := map[string]any{}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		details["email"] = "must be a valid email address"
	}
	if !in.Role.Valid() {
		details["role"] = "must be Customer or Admin"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user update", details)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = in.Email
	user.Role = in.Role
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
				return nil, apperrors.NewValidationError(err.Error(), map[string]any{"password": err.Error()})
			}
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflict("email already registered", nil)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}
