package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-service/internal/api/dto"
	"github.com/spec-kit/loan-service/internal/auth"
	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/service"
	apperrors "github.com/spec-kit/loan-service/pkg/util"
)

// AuthHandler exposes login, registration and logout.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(token)})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.RegisterCustomer(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": authResponse(token)})
}

// RegisterWithCode handles POST /auth/register/:code.
func (h *AuthHandler) RegisterWithCode(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.RegisterWithInvite(c.UserContext(), c.Params("code"), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": authResponse(token)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	access, ok := auth.AccessFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), access.TokenID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func authResponse(token domain.IssuedToken) dto.AuthResponse {
	return dto.AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAt}
}
