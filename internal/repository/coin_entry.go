package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/infra"
)

type coinEntryRepo struct{}

// NewCoinEntryRepository returns a pgx-backed CoinEntryRepository.
func NewCoinEntryRepository() CoinEntryRepository {
	return &coinEntryRepo{}
}

func (r *coinEntryRepo) Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.CoinEntry, error) {
	entry := &domain.CoinEntry{
		ID:           uuid.New(),
		AccountID:    params.AccountID,
		Type:         params.Type,
		Amount:       params.Amount,
		BalanceAfter: balanceAfter,
		ReferenceID:  params.ReferenceID,
		Metadata:     params.Metadata,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := db.Exec(ctx, `
		INSERT INTO coin_entries (id, account_id, type, amount, balance_after, reference_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.AccountID, entry.Type,
		infra.CoinsToNumeric(entry.Amount), infra.CoinsToNumeric(entry.BalanceAfter),
		entry.ReferenceID, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert coin entry: %w", err)
	}
	return entry, nil
}

func (r *coinEntryRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.CoinEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, account_id, type, amount, balance_after, reference_id, metadata, created_at
		FROM coin_entries WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list coin entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CoinEntry
	for rows.Next() {
		var e domain.CoinEntry
		var amountNum, balanceNum pgtype.Numeric
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &amountNum, &balanceNum,
			&e.ReferenceID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coin entry: %w", err)
		}
		if e.Amount, err = infra.NumericToCoins(amountNum); err != nil {
			return nil, fmt.Errorf("convert amount: %w", err)
		}
		if e.BalanceAfter, err = infra.NumericToCoins(balanceNum); err != nil {
			return nil, fmt.Errorf("convert balance_after: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
