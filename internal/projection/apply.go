package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/packvault/platform/internal/domain"
)

// Apply folds one domain event into the read models. Unknown event types are
// skipped, keeping the consumer forward compatible with new producers.
func Apply(ctx context.Context, store Store, eventType domain.EventType, payload json.RawMessage) error {
	switch eventType {
	case domain.EventEntryPosted:
		var entry domain.CoinEntry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return fmt.Errorf("decode coin entry: %w", err)
		}
		return UpdateBalance(ctx, store, BalanceProjection{
			AccountID: entry.AccountID.String(),
			Coins:     entry.BalanceAfter,
		})

	case domain.EventPackOpened:
		var opened struct {
			BoxID    string `json:"box_id"`
			Quantity int64  `json:"quantity"`
		}
		if err := json.Unmarshal(payload, &opened); err != nil {
			return fmt.Errorf("decode pack opened: %w", err)
		}
		return AddBoxOpens(ctx, store, opened.BoxID, opened.Quantity)

	default:
		return nil
	}
}
