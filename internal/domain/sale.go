package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel causes for sell conflicts, matched with errors.Is.
var (
	ErrSaleBlockedByOrder  = errors.New("pull held by an active order")
	ErrSaleBlockedByBattle = errors.New("pull belongs to an unfinished battle")
)

// SaleHistory is an append-only ledger row created when a pull is converted
// back to coins. Never mutated afterward.
type SaleHistory struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	PullID    uuid.UUID `json:"pull_id"`
	Name      string    `json:"name"`
	SetName   string    `json:"set_name,omitempty"`
	Rarity    string    `json:"rarity,omitempty"`
	CoinValue int64     `json:"coin_value"`
	CreatedAt time.Time `json:"created_at"`
}

// SellRejectionReason explains why one item of a bulk sell was skipped.
type SellRejectionReason string

const (
	RejectNotFound        SellRejectionReason = "not_found"
	RejectBlockedByOrder  SellRejectionReason = "blocked_by_order"
	RejectBlockedByBattle SellRejectionReason = "blocked_by_battle"
)

// SellRejection pairs a rejected pull id with its reason. Bulk sells report
// these alongside the successfully sold subset instead of failing the batch.
type SellRejection struct {
	PullID uuid.UUID           `json:"pull_id"`
	Reason SellRejectionReason `json:"reason"`
}
