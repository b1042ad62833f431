package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewEntryPostedEvent creates the standard wallet event for a coin ledger entry.
func NewEntryPostedEvent(entry *CoinEntry) OutboxDraft {
	payload, _ := json.Marshal(entry)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   entry.AccountID.String(),
		EventType:     EventEntryPosted,
		PartitionKey:  entry.AccountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewAccountCreatedEvent creates an account lifecycle event.
func NewAccountCreatedEvent(accountID uuid.UUID, username string, role Role) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"account_id": accountID.String(),
		"username":   username,
		"role":       string(role),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateAccount,
		AggregateID:   accountID.String(),
		EventType:     EventAccountCreated,
		PartitionKey:  accountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPackOpenedEvent records a completed pack opening for projections.
func NewPackOpenedEvent(accountID, boxID uuid.UUID, quantity, pullCount int, totalCost int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"account_id": accountID.String(),
		"box_id":     boxID.String(),
		"quantity":   quantity,
		"pull_count": pullCount,
		"total_cost": totalCost,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBox,
		AggregateID:   boxID.String(),
		EventType:     EventPackOpened,
		PartitionKey:  boxID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPullSoldEvent records a pull converted back to coins.
func NewPullSoldEvent(sale *SaleHistory) OutboxDraft {
	payload, _ := json.Marshal(sale)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateAccount,
		AggregateID:   sale.AccountID.String(),
		EventType:     EventPullSold,
		PartitionKey:  sale.AccountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBattleCreatedEvent records a new battle opening for seats.
func NewBattleCreatedEvent(b *Battle) OutboxDraft {
	payload, _ := json.Marshal(b)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBattle,
		AggregateID:   b.ID.String(),
		EventType:     EventBattleCreated,
		PartitionKey:  b.ID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBattleFinishedEvent records a settled battle: winners, team, prize.
func NewBattleFinishedEvent(b *Battle, winnerIDs []uuid.UUID) OutboxDraft {
	ids := make([]string, len(winnerIDs))
	for i, id := range winnerIDs {
		ids[i] = id.String()
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"battle_id":    b.ID.String(),
		"winner_ids":   ids,
		"winning_team": b.WinningTeam,
		"total_prize":  b.TotalPrize,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBattle,
		AggregateID:   b.ID.String(),
		EventType:     EventBattleFinished,
		PartitionKey:  b.ID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBattleCancelledEvent records a cancelled battle and its refund total.
func NewBattleCancelledEvent(battleID uuid.UUID, refunded int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"battle_id": battleID.String(),
		"refunded":  refunded,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBattle,
		AggregateID:   battleID.String(),
		EventType:     EventBattleCancelled,
		PartitionKey:  battleID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
