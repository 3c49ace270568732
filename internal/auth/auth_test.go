package auth

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/loan-service/internal/config"
	"github.com/spec-kit/loan-service/internal/domain"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:      testSecret,
		Issuer:         "loan-service",
		Audience:       "loan-service-clients",
		AccessTokenTTL: time.Hour,
		SessionTTL:     time.Hour,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, VerifyPassword("s3cret!", hash))
	require.False(t, VerifyPassword("s3cret?", hash))
	require.False(t, VerifyPassword("", hash))
	require.False(t, VerifyPassword("s3cret!", ""))
	require.False(t, VerifyPassword("s3cret!", "not-a-bcrypt-hash"))
}

func TestHashPasswordRejectsBadInput(t *testing.T) {
	_, err := HashPassword("   ", bcrypt.MinCost)
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordLength+1), bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHashPasswordLengths(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr error
	}{
		{name: "beyond bcrypt input cap", length: 100},
		{name: "at limit", length: MaxPasswordLength},
		{name: "over limit", length: MaxPasswordLength + 1, wantErr: ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password := strings.Repeat("a", tt.length)
			hash, err := HashPassword(password, bcrypt.MinCost)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, VerifyPassword(password, hash))
		})
	}
}

func TestVerifyPasswordUsesWholeInput(t *testing.T) {
	prefix := strings.Repeat("p", 72)
	hash, err := HashPassword(prefix+"first", bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, VerifyPassword(prefix+"first", hash))
	require.False(t, VerifyPassword(prefix+"second", hash))
}

func TestTokenIssueAndParse(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())

	issued, err := tm.Issue(42, "a@x.com", domain.RoleCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, issued.TokenID)
	require.Equal(t, int64(42), issued.UserID)

	claims, err := tm.Parse(issued.Token)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "Customer", claims.Role)
	require.Equal(t, issued.TokenID, claims.ID)

	second, err := tm.Issue(42, "a@x.com", domain.RoleCustomer)
	require.NoError(t, err)
	require.NotEqual(t, issued.TokenID, second.TokenID)
}

func TestTokenIssueRequiresLongSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewTokenManager(cfg).Issue(1, "a@x.com", domain.RoleAdmin)
	require.ErrorIs(t, err, ErrSigningSecretInvalid)

	cfg.JWTSecret = ""
	_, err = NewTokenManager(cfg).Issue(1, "a@x.com", domain.RoleAdmin)
	require.ErrorIs(t, err, ErrSigningSecretInvalid)
}

func TestTokenParseRejects(t *testing.T) {
	tm := NewTokenManager(testAuthConfig())
	issued, err := tm.Issue(1, "a@x.com", domain.RoleAdmin)
	require.NoError(t, err)

	t.Run("tampered", func(t *testing.T) {
		_, err := tm.Parse(issued.Token + "x")
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager(testAuthConfig())
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(issued.Token)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other audience", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.Audience = "someone-else"
		_, err := NewTokenManager(cfg).Parse(issued.Token)
		require.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.JWTSecret = strings.Repeat("z", 40)
		_, err := NewTokenManager(cfg).Parse(issued.Token)
		require.Error(t, err)
	})
}

func TestResolveAccess(t *testing.T) {
	valid := &Claims{Email: "a@x.com", Role: "Admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "9", ID: "jti"}}
	access, err := ResolveAccess(valid)
	require.NoError(t, err)
	require.Equal(t, AccessContext{UserID: 9, Email: "a@x.com", Role: domain.RoleAdmin, TokenID: "jti"}, access)
	require.True(t, access.IsAdmin())

	cases := map[string]*Claims{
		"nil claims":      nil,
		"non-numeric sub": {Email: "a@x.com", Role: "Admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "abc", ID: "jti"}},
		"missing email":   {Role: "Admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "9", ID: "jti"}},
		"unknown role":    {Email: "a@x.com", Role: "Root", RegisteredClaims: jwt.RegisteredClaims{Subject: "9", ID: "jti"}},
		"missing jti":     {Email: "a@x.com", Role: "Admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "9"}},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveAccess(claims)
			require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func newSessionStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, time.Hour), srv
}

func TestRedisSessionStoreLifecycle(t *testing.T) {
	store, srv := newSessionStore(t)
	ctx := context.Background()
	token := domain.IssuedToken{TokenID: "abc", UserID: 7}

	active, err := store.IsActive(ctx, "abc")
	require.NoError(t, err)
	require.False(t, active)

	require.NoError(t, store.Register(ctx, token))
	value, err := srv.Get("session:abc")
	require.NoError(t, err)
	require.Equal(t, "7", value)
	require.Equal(t, time.Hour, srv.TTL("session:abc"))

	active, err = store.IsActive(ctx, "abc")
	require.NoError(t, err)
	require.True(t, active)

	require.NoError(t, store.Revoke(ctx, "abc"))
	require.NoError(t, store.Revoke(ctx, "abc"))

	active, err = store.IsActive(ctx, "abc")
	require.NoError(t, err)
	require.False(t, active)
}

func TestRedisSessionStoreExpires(t *testing.T) {
	store, srv := newSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Register(ctx, domain.IssuedToken{TokenID: "ttl", UserID: 1}))
	srv.FastForward(time.Hour + time.Second)

	active, err := store.IsActive(ctx, "ttl")
	require.NoError(t, err)
	require.False(t, active)
}

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager, *RedisSessionStore) {
	t.Helper()
	tm := NewTokenManager(testAuthConfig())
	store, _ := newSessionStore(t)
	mw := NewAuthMiddleware(tm, store, zap.NewNop())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		access, _ := AccessFromContext(c)
		return c.JSON(fiber.Map{"id": access.UserID})
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, tm, store
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, store := newProtectedApp(t)
	ctx := context.Background()

	customer, err := tm.Issue(5, "c@x.com", domain.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, customer))

	do := func(path, header string) int {
		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusUnauthorized, do("/me", ""))
	require.Equal(t, fiber.StatusUnauthorized, do("/me", "Basic abc"))
	require.Equal(t, fiber.StatusUnauthorized, do("/me", "Bearer garbage"))
	require.Equal(t, fiber.StatusOK, do("/me", "Bearer "+customer.Token))
	require.Equal(t, fiber.StatusForbidden, do("/admin", "Bearer "+customer.Token))

	require.NoError(t, store.Revoke(ctx, customer.TokenID))
	require.Equal(t, fiber.StatusUnauthorized, do("/me", "Bearer "+customer.Token))

	unregistered, err := tm.Issue(6, "d@x.com", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, do("/admin", "Bearer "+unregistered.Token))
}
