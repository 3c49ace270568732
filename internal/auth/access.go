package auth

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-service/internal/domain"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

const accessKey = "auth_access"

// AccessContext is the authenticated caller as seen by services.
type AccessContext struct {
	UserID  int64
	Email   string
	Role    domain.UserRole
	TokenID string
}

// IsAdmin reports whether the caller holds the Admin role.
func (a AccessContext) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// ResolveAccess derives the caller's identity from verified claims.
func ResolveAccess(claims *Claims) (AccessContext, error) {
	if claims == nil {
		return AccessContext{}, apperrors.NewUnauthorized("missing token claims")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return AccessContext{}, apperrors.NewUnauthorized("invalid token subject")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return AccessContext{}, apperrors.NewUnauthorized("invalid token email")
	}
	role, err := domain.ParseUserRole(claims.Role)
	if err != nil {
		return AccessContext{}, apperrors.NewUnauthorized("invalid token role")
	}
	if claims.ID == "" {
		return AccessContext{}, apperrors.NewUnauthorized("invalid token id")
	}
	return AccessContext{
		UserID:  userID,
		Email:   claims.Email,
		Role:    role,
		TokenID: claims.ID,
	}, nil
}

// AccessFromContext retrieves the authenticated caller.
func AccessFromContext(c *fiber.Ctx) (AccessContext, bool) {
	access, ok := c.Locals(accessKey).(AccessContext)
	return access, ok
}
