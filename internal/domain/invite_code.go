package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InviteCode binds a single-use code to the email allowed to redeem it.
type InviteCode struct {
	ID        int64
	Code      uuid.UUID
	Email     string
	IsUsed    bool
	CreatedAt time.Time
}

// RedeemableBy is the full validity predicate for redemption: unused and bound to email.
func (i *InviteCode) RedeemableBy(email string) bool {
	return i != nil && !i.IsUsed && strings.EqualFold(i.Email, strings.TrimSpace(email))
}
