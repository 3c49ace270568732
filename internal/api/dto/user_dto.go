package dto

import (
	"time"

	"github.com/spec-kit/loan-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest payload for customer and invite registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// InvitationRequest asks for an admin invitation for email.
type InvitationRequest struct {
	Email string `json:"email" validate:"required,email,max=256"`
}

// InvitationResponse carries the invite code to hand to the invitee.
type InvitationResponse struct {
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	IsUsed    bool      `json:"isUsed"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateUserRequest is an admin edit of an account.
type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email,max=256"`
	Role     string  `json:"role" validate:"required,oneof=Customer Admin"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=128"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UserID    int64           `json:"userId"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewUserResponse maps a domain user, leaving out the password hash.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{UserID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// NewInvitationResponse maps an invite code.
func NewInvitationResponse(i domain.InviteCode) InvitationResponse {
	return InvitationResponse{Code: i.Code.String(), Email: i.Email, IsUsed: i.IsUsed, CreatedAt: i.CreatedAt}
}
