package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventAccountCreated  EventType = "vault.account.created"
	EventEntryPosted     EventType = "vault.wallet.entry.posted"
	EventPackOpened      EventType = "vault.pack.opened"
	EventPullSold        EventType = "vault.pull.sold"
	EventBattleCreated   EventType = "vault.battle.created"
	EventBattleFinished  EventType = "vault.battle.finished"
	EventBattleCancelled EventType = "vault.battle.cancelled"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateAccount AggregateType = "account"
	AggregateWallet  AggregateType = "wallet"
	AggregateBox     AggregateType = "box"
	AggregateBattle  AggregateType = "battle"
)

// OutboxDraft is the payload written to the event_outbox table. Events are
// inserted inside the same transaction as the state change they describe and
// shipped to Kafka by the outbox poller.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
