package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/packvault/platform/internal/domain"
)

type orderRepo struct{}

// NewOrderRepository returns a pgx-backed OrderRepository.
func NewOrderRepository() OrderRepository {
	return &orderRepo{}
}

func (r *orderRepo) HasBlockingOrder(ctx context.Context, db DBTX, pullID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE oi.pull_id = $1 AND o.status = ANY($2)
		)`, pullID, blockingStatuses()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blocking order: %w", err)
	}
	return exists, nil
}

func (r *orderRepo) DeleteNonBlockingItems(ctx context.Context, tx pgx.Tx, pullID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM order_items oi
		USING orders o
		WHERE o.id = oi.order_id AND oi.pull_id = $1 AND NOT (o.status = ANY($2))`,
		pullID, blockingStatuses())
	if err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}

func (r *orderRepo) DeleteCartItems(ctx context.Context, tx pgx.Tx, pullID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE pull_id = $1`, pullID)
	if err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return nil
}

func blockingStatuses() []string {
	return []string{
		string(domain.OrderPaid),
		string(domain.OrderProcessing),
		string(domain.OrderShipped),
		string(domain.OrderDelivered),
	}
}
