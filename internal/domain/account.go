package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleBot   Role = "bot"
)

// Account represents an accounts row. Coins is stored as numeric(15,0) and
// never goes negative; every mutation runs through the ledger engine inside
// the same transaction as the inventory change it pays for.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsBot        bool      `json:"is_bot"`
	Coins        int64     `json:"coins"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
