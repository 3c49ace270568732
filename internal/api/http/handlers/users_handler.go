package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loan-service/internal/api/dto"
	"github.com/spec-kit/loan-service/internal/domain"
	"github.com/spec-kit/loan-service/internal/service"
)

// UsersHandler exposes admin user management.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(*user)})
}

// CreateInvitation handles POST /users/invitation. The email may come in the
// body or as the email query parameter.
func (h *UsersHandler) CreateInvitation(c *fiber.Ctx) error {
	req := dto.InvitationRequest{Email: c.Query("email")}
	if req.Email == "" {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	} else if err := validateStruct(&req); err != nil {
		return err
	}

	invite, err := h.users.CreateInvitation(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewInvitationResponse(*invite)})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), id, service.UpdateUserInput{
		Email:    req.Email,
		Role:     domain.UserRole(req.Role),
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(*user)})
}
