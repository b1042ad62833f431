package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/repository"
)

// Engine provides the coin ledger write primitives:
//  1. LockAccountForUpdate — row-level pessimistic lock
//  2. PostEntry — atomic balance update + append-only insert + outbox event
//
// Every coin-moving operation in the system flows through PostEntry, within
// the caller's database transaction.
type Engine struct {
	accounts repository.AccountRepository
	entries  repository.CoinEntryRepository
	outbox   repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	accounts repository.AccountRepository,
	entries repository.CoinEntryRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		accounts: accounts,
		entries:  entries,
		outbox:   outbox,
	}
}

// LockAccountForUpdate acquires a row-level lock and returns the account.
// Must be called within a transaction.
func (e *Engine) LockAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Account, error) {
	account, err := e.accounts.LockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}
	return account, nil
}

// PostEntry atomically applies a signed coin delta and records it.
//
// Steps:
//  1. Update the account balance using server-side arithmetic
//  2. Insert the coin entry with the post-update balance snapshot
//  3. Insert the outbox event
//
// All 3 steps run within the caller's transaction. The caller is responsible
// for holding the account lock and for any funds check; PostEntry never
// rejects a negative result on its own.
func (e *Engine) PostEntry(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams) (*domain.CoinEntry, *domain.Account, error) {
	// coin_entries.metadata is NOT NULL; absent metadata becomes {}.
	params.Metadata = ensureJSON(params.Metadata)

	updated, err := e.accounts.AdjustCoins(ctx, tx, params.AccountID, params.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("adjust coins: %w", err)
	}

	entry, err := e.entries.Insert(ctx, tx, params, updated.Coins)
	if err != nil {
		return nil, nil, fmt.Errorf("insert coin entry: %w", err)
	}

	event := domain.NewEntryPostedEvent(entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}

// ExecuteCharge locks the account, verifies funds and posts a debit entry.
// The amount is the positive charge; the posted entry carries -amount.
func (e *Engine) ExecuteCharge(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams) (*domain.CoinEntry, *domain.Account, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, nil, err
	}

	account, err := e.LockAccountForUpdate(ctx, tx, params.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if account.Coins < params.Amount {
		return nil, nil, domain.ErrInsufficientFunds()
	}

	params.Amount = -params.Amount
	return e.PostEntry(ctx, tx, params)
}

// ExecuteCredit locks the account and posts a credit entry.
func (e *Engine) ExecuteCredit(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams) (*domain.CoinEntry, *domain.Account, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, nil, err
	}

	if _, err := e.LockAccountForUpdate(ctx, tx, params.AccountID); err != nil {
		return nil, nil, err
	}

	return e.PostEntry(ctx, tx, params)
}
