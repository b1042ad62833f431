package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/packvault/platform/internal/domain"
)

type saleHistoryRepo struct{}

// NewSaleHistoryRepository returns a pgx-backed SaleHistoryRepository.
func NewSaleHistoryRepository() SaleHistoryRepository {
	return &saleHistoryRepo{}
}

func (r *saleHistoryRepo) Insert(ctx context.Context, db DBTX, sale *domain.SaleHistory) error {
	_, err := db.Exec(ctx, `
		INSERT INTO sale_history (id, account_id, pull_id, name, set_name, rarity, coin_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sale.ID, sale.AccountID, sale.PullID, sale.Name, sale.SetName, sale.Rarity, sale.CoinValue, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *saleHistoryRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.SaleHistory, error) {
	rows, err := db.Query(ctx, `
		SELECT id, account_id, pull_id, name, set_name, rarity, coin_value, created_at
		FROM sale_history WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.SaleHistory
	for rows.Next() {
		var s domain.SaleHistory
		if err := rows.Scan(&s.ID, &s.AccountID, &s.PullID, &s.Name, &s.SetName,
			&s.Rarity, &s.CoinValue, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
