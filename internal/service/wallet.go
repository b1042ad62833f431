package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/repository"
)

// WalletService exposes balance and ledger history reads.
type WalletService struct {
	pool     *pgxpool.Pool
	accounts repository.AccountRepository
	entries  repository.CoinEntryRepository
}

// NewWalletService creates a WalletService.
func NewWalletService(pool *pgxpool.Pool, accounts repository.AccountRepository, entries repository.CoinEntryRepository) *WalletService {
	return &WalletService{pool: pool, accounts: accounts, entries: entries}
}

// Balance returns the account's current coin balance.
func (s *WalletService) Balance(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}
	return account, nil
}

// Entries returns the account's coin ledger, newest first.
func (s *WalletService) Entries(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.CoinEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.entries.ListByAccount(ctx, s.pool, accountID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list entries", err)
	}
	return entries, nil
}
