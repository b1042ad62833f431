package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/infra"
)

type accountRepo struct{}

// NewAccountRepository returns a pgx-backed AccountRepository.
func NewAccountRepository() AccountRepository {
	return &accountRepo{}
}

const accountColumns = `id, username, password_hash, role, is_bot, coins, created_at, updated_at`

func (r *accountRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *accountRepo) FindByUsername(ctx context.Context, db DBTX, username string) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

func (r *accountRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

func (r *accountRepo) Create(ctx context.Context, db DBTX, account *domain.Account) error {
	_, err := db.Exec(ctx, `
		INSERT INTO accounts (id, username, password_hash, role, is_bot, coins, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.Role,
		account.IsBot,
		infra.CoinsToNumeric(account.Coins),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// AdjustCoins uses server-side arithmetic so concurrent writers never clobber
// each other's balance reads.
func (r *accountRepo) AdjustCoins(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `
		UPDATE accounts SET coins = coins + $1, updated_at = now()
		WHERE id = $2
		RETURNING `+accountColumns, infra.CoinsToNumeric(delta), id)
	return scanAccount(row)
}

// ListBots returns bot accounts not already seated in the given battle.
func (r *accountRepo) ListBots(ctx context.Context, db DBTX, battleID uuid.UUID, limit int) ([]domain.Account, error) {
	rows, err := db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE is_bot = true
		  AND NOT EXISTS (
			SELECT 1 FROM battle_participants bp
			WHERE bp.battle_id = $1 AND bp.account_id = accounts.id
		  )
		ORDER BY created_at ASC
		LIMIT $2`, battleID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}
	defer rows.Close()

	var bots []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, *a)
	}
	return bots, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var coinsNum pgtype.Numeric
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.IsBot, &coinsNum, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	a.Coins, err = infra.NumericToCoins(coinsNum)
	if err != nil {
		return nil, fmt.Errorf("convert coins: %w", err)
	}
	return &a, nil
}
