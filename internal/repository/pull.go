package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/packvault/platform/internal/domain"
)

type pullRepo struct{}

// NewPullRepository returns a pgx-backed PullRepository.
func NewPullRepository() PullRepository {
	return &pullRepo{}
}

const pullColumns = `id, account_id, box_id, item_id, kind, name, image_url, set_name, rarity, coin_value, created_at`

func (r *pullRepo) Insert(ctx context.Context, db DBTX, pull *domain.Pull) error {
	_, err := db.Exec(ctx, `
		INSERT INTO pulls (id, account_id, box_id, item_id, kind, name, image_url, set_name, rarity, coin_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		pull.ID, pull.AccountID, pull.BoxID, pull.ItemID, pull.Kind, pull.Name,
		pull.ImageURL, pull.SetName, pull.Rarity, pull.CoinValue, pull.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pull: %w", err)
	}
	return nil
}

func (r *pullRepo) FindOwned(ctx context.Context, db DBTX, id, accountID uuid.UUID) (*domain.Pull, error) {
	row := db.QueryRow(ctx, `
		SELECT `+pullColumns+`
		FROM pulls WHERE id = $1 AND account_id = $2`, id, accountID)
	return scanPull(row)
}

func (r *pullRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.Pull, error) {
	rows, err := db.Query(ctx, `
		SELECT `+pullColumns+`
		FROM pulls WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pulls: %w", err)
	}
	defer rows.Close()

	var pulls []domain.Pull
	for rows.Next() {
		p, err := scanPull(rows)
		if err != nil {
			return nil, err
		}
		pulls = append(pulls, *p)
	}
	return pulls, rows.Err()
}

func (r *pullRepo) UpdateOwner(ctx context.Context, tx pgx.Tx, pullID, newOwner uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE pulls SET account_id = $1 WHERE id = $2`, newOwner, pullID)
	if err != nil {
		return fmt.Errorf("update pull owner: %w", err)
	}
	return nil
}

func (r *pullRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM pulls WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete pull: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanPull(row pgx.Row) (*domain.Pull, error) {
	var p domain.Pull
	err := row.Scan(&p.ID, &p.AccountID, &p.BoxID, &p.ItemID, &p.Kind, &p.Name,
		&p.ImageURL, &p.SetName, &p.Rarity, &p.CoinValue, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan pull: %w", err)
	}
	return &p, nil
}
