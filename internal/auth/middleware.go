package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// AuthMiddleware validates bearer tokens and their sessions.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionChecker
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	access, err := ResolveAccess(claims)
	if err != nil {
		return err
	}

	active, err := m.sessions.IsActive(c.UserContext(), access.TokenID)
	if err != nil {
		m.logger.Error("session lookup failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	if !active {
		return apperrors.NewUnauthorized("session expired or revoked")
	}

	c.Locals(accessKey, access)
	return c.Next()
}
