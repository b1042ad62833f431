//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates all tables in dependency-safe order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"sale_history",
		"coin_entries",
		"cart_items",
		"order_items",
		"orders",
		"battle_pulls",
		"battle_participants",
		"battles",
		"pulls",
		"box_items",
		"boxes",
		"accounts",
	}

	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
