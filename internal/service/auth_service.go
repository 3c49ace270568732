package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/config"
	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/repository"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

const invalidCredentials = "invalid email or password"

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users      repository.UserRepository
	tx         repository.Transactor
	sessions   auth.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Transactor repository.Transactor
	Sessions   auth.SessionStore
	Tokens     *auth.TokenManager
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tx:         deps.Transactor,
		sessions:   deps.Sessions,
		tokenMgr:   deps.Tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     deps.Logger,
	}
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.IssuedToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.IssuedToken{}, apperrors.NewUnauthorized(invalidCredentials)
		}
		return domain.IssuedToken{}, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return domain.IssuedToken{}, apperrors.NewUnauthorized(invalidCredentials)
	}
	return s.issueSession(ctx, user)
}

// RegisterCustomer creates a Customer account and signs it in.
func (s *AuthService) RegisterCustomer(ctx context.Context, email, password string) (domain.IssuedToken, error) {
	hash, err := s.hash(password)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	user := &domain.User{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.IssuedToken{}, apperrors.NewConflict("email already registered", nil)
		}
		return domain.IssuedToken{}, err
	}

	s.logger.Info("customer registered", zap.Int64("user_id", user.ID))
	return s.issueSession(ctx, user)
}

// RegisterWithInvite redeems an invitation code and creates an Admin account.
// The code row stays locked for the whole transaction so concurrent
// redemptions of the same code serialize and only one succeeds.
func (s *AuthService) RegisterWithInvite(ctx context.Context, code, email, password string) (domain.IssuedToken, error) {
	inviteCode, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return domain.IssuedToken{}, apperrors.NewNotFound("invite code", nil)
	}
	hash, err := s.hash(password)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	email = normalizeEmail(email)

	var user *domain.User
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		invite, err := repos.InviteCodes.GetByCodeForUpdate(ctx, inviteCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("invite code", nil)
			}
			return err
		}
		if invite.IsUsed {
			return apperrors.NewConflict("invite code already used", nil)
		}
		if !invite.RedeemableBy(email) {
			return apperrors.NewForbidden("invite code was issued for a different email")
		}

		user = &domain.User{Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
		if err := repos.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewConflict("email already registered", nil)
			}
			return err
		}

		if err := repos.InviteCodes.MarkUsed(ctx, invite.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewConflict("invite code already used", nil)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.IssuedToken{}, err
	}

	s.logger.Info("admin registered with invite", zap.Int64("user_id", user.ID))
	return s.issueSession(ctx, user)
}

// Logout revokes the session behind a token. Revoking twice is fine.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Revoke(ctx, tokenID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// SeedAdmin creates the bootstrap Admin account when it does not exist yet.
// It reports whether an account was created.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	user := &domain.User{Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("admin account seeded", zap.Int64("user_id", user.ID), zap.String("email", email))
	return true, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (domain.IssuedToken, error) {
	token, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	if err := s.sessions.Register(ctx, token); err != nil {
		s.logger.Error("session registration failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return domain.IssuedToken{}, apperrors.NewInternalError(err)
	}
	return token, nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	switch {
	case errors.Is(err, auth.ErrEmptyPassword), errors.Is(err, auth.ErrPasswordTooLong):
		return "", apperrors.NewValidationError(err.Error(), map[string]any{"password": err.Error()})
	case err != nil:
		return "", err
	}
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
