package projection

import (
	"context"
	"fmt"
	"time"
)

// BalanceProjection is a cached account balance, fed from wallet entry events.
type BalanceProjection struct {
	AccountID string `json:"account_id"`
	Coins     int64  `json:"coins"`
	UpdatedAt string `json:"updated_at"`
}

const balanceTTL = 5 * time.Minute

// UpdateBalance caches an account's balance projection.
func UpdateBalance(ctx context.Context, store Store, p BalanceProjection) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	key := fmt.Sprintf("projection:balance:%s", p.AccountID)
	return SetJSON(ctx, store, key, p, balanceTTL)
}

// GetBalance retrieves a cached account balance projection.
func GetBalance(ctx context.Context, store Store, accountID string) (*BalanceProjection, error) {
	key := fmt.Sprintf("projection:balance:%s", accountID)
	var p BalanceProjection
	if err := GetJSON(ctx, store, key, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InvalidateBalance removes an account's cached balance.
func InvalidateBalance(ctx context.Context, store Store, accountID string) error {
	key := fmt.Sprintf("projection:balance:%s", accountID)
	return store.Delete(ctx, key)
}
