package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryType enumerates all coin ledger entry types.
type EntryType string

const (
	EntrySignupGrant  EntryType = "signup_grant"
	EntryPackOpen     EntryType = "pack_open"
	EntryBattleEntry  EntryType = "battle_entry"
	EntryBattlePrize  EntryType = "battle_prize"
	EntryBattleRefund EntryType = "battle_refund"
	EntrySaleCredit   EntryType = "sale_credit"
	EntryBotTopUp     EntryType = "bot_topup"
)

// CoinEntry is a coin_entries row: an append-only record of one balance
// mutation, carrying the post-update balance snapshot.
type CoinEntry struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Type         EntryType       `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	ReferenceID  *uuid.UUID      `json:"reference_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PostEntryParams carries one ledger write: a signed coin delta plus the
// entry row describing it.
type PostEntryParams struct {
	AccountID   uuid.UUID
	Type        EntryType
	Amount      int64
	ReferenceID *uuid.UUID
	Metadata    json.RawMessage
}
