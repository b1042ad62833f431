package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/packvault/platform/internal/domain"
)

type boxRepo struct{}

// NewBoxRepository returns a pgx-backed BoxRepository.
func NewBoxRepository() BoxRepository {
	return &boxRepo{}
}

func (r *boxRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Box, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, price, items_per_pack, active, opens_count, created_at
		FROM boxes WHERE id = $1`, id)

	var b domain.Box
	err := row.Scan(&b.ID, &b.Name, &b.Price, &b.ItemsPerPack, &b.Active, &b.OpensCount, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan box: %w", err)
	}

	rows, err := db.Query(ctx, `
		SELECT id, box_id, kind, name, image_url, set_name, rarity, pull_rate, coin_value
		FROM box_items WHERE box_id = $1
		ORDER BY pull_rate DESC, name ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list box items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.BoxItem
		if err := rows.Scan(&item.ID, &item.BoxID, &item.Kind, &item.Name, &item.ImageURL,
			&item.SetName, &item.Rarity, &item.PullRate, &item.CoinValue); err != nil {
			return nil, fmt.Errorf("scan box item: %w", err)
		}
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *boxRepo) ListActive(ctx context.Context, db DBTX) ([]domain.Box, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, price, items_per_pack, active, opens_count, created_at
		FROM boxes WHERE active = true
		ORDER BY opens_count DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()

	var boxes []domain.Box
	for rows.Next() {
		var b domain.Box
		if err := rows.Scan(&b.ID, &b.Name, &b.Price, &b.ItemsPerPack, &b.Active, &b.OpensCount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}

func (r *boxRepo) IncrementOpens(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error {
	_, err := tx.Exec(ctx, `
		UPDATE boxes SET opens_count = opens_count + $1 WHERE id = $2`, n, id)
	if err != nil {
		return fmt.Errorf("increment opens: %w", err)
	}
	return nil
}
