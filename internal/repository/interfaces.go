package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/packvault/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AccountRepository provides access to accounts.
type AccountRepository interface {
	// FindByID returns an account by id, nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error)

	// FindByUsername returns an account by username, nil if absent.
	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.Account, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the account.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)

	// Create inserts a new account.
	Create(ctx context.Context, db DBTX, account *domain.Account) error

	// AdjustCoins atomically applies a signed delta with server-side arithmetic
	// and returns the updated row.
	AdjustCoins(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Account, error)

	// ListBots returns bot accounts not seated in battleID, oldest first.
	ListBots(ctx context.Context, db DBTX, battleID uuid.UUID, limit int) ([]domain.Account, error)
}

// BoxRepository provides read access to box definitions and their pools.
type BoxRepository interface {
	// FindByID returns a box with its full item pool, nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Box, error)

	// ListActive returns active boxes without items, most opened first.
	ListActive(ctx context.Context, db DBTX) ([]domain.Box, error)

	// IncrementOpens bumps the popularity counter by n.
	IncrementOpens(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error
}

// PullRepository provides access to owned inventory units.
type PullRepository interface {
	// Insert creates a pull.
	Insert(ctx context.Context, db DBTX, pull *domain.Pull) error

	// FindOwned returns a pull only when owned by the given account, nil otherwise.
	FindOwned(ctx context.Context, db DBTX, id, accountID uuid.UUID) (*domain.Pull, error)

	// ListByAccount returns an account's pulls, newest first.
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.Pull, error)

	// UpdateOwner reassigns a pull to a new account.
	UpdateOwner(ctx context.Context, tx pgx.Tx, pullID, newOwner uuid.UUID) error

	// Delete removes a pull, reporting whether a row existed.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
}

// BattleRepository provides access to battles, seats and round history.
type BattleRepository interface {
	Insert(ctx context.Context, db DBTX, b *domain.Battle) error

	// FindByID returns a battle, nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Battle, error)

	// LockForUpdate locks the battle row for the duration of the transaction.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Battle, error)

	// List returns battles filtered by status ("" for all), newest first.
	List(ctx context.Context, db DBTX, status domain.BattleStatus, limit int) ([]domain.Battle, error)

	InsertParticipant(ctx context.Context, db DBTX, p *domain.BattleParticipant) error

	// ListParticipants returns seats ordered by join time ascending.
	ListParticipants(ctx context.Context, db DBTX, battleID uuid.UUID) ([]domain.BattleParticipant, error)

	// FindParticipant returns the seat for an account, nil if absent.
	FindParticipant(ctx context.Context, db DBTX, battleID, accountID uuid.UUID) (*domain.BattleParticipant, error)

	// CountParticipants returns the number of filled seats.
	CountParticipants(ctx context.Context, db DBTX, battleID uuid.UUID) (int, error)

	// MarkInProgress flips WAITING -> IN_PROGRESS; reports whether this call won.
	MarkInProgress(ctx context.Context, tx pgx.Tx, battleID uuid.UUID) (bool, error)

	// MarkFinishedIfComplete flips IN_PROGRESS -> FINISHED only when every
	// participant has pulled all rounds. The affected-row count is the
	// "did I win the race to finalize" signal.
	MarkFinishedIfComplete(ctx context.Context, tx pgx.Tx, battleID uuid.UUID) (bool, error)

	// MarkCancelled flips WAITING -> CANCELLED; reports whether this call won.
	MarkCancelled(ctx context.Context, tx pgx.Tx, battleID uuid.UUID) (bool, error)

	// SetResult writes the settlement outcome onto a finished battle.
	SetResult(ctx context.Context, tx pgx.Tx, battleID, winnerID uuid.UUID, winningTeam *int) error

	// RecordRound bumps a participant's rounds_pulled and total_value.
	RecordRound(ctx context.Context, tx pgx.Tx, participantID uuid.UUID, value int64) error

	// AddPrize bumps the battle's accumulated prize pool.
	AddPrize(ctx context.Context, tx pgx.Tx, battleID uuid.UUID, value int64) error

	InsertBattlePull(ctx context.Context, db DBTX, bp *domain.BattlePull) error

	// ListBattlePulls returns round history ordered by pull time ascending.
	ListBattlePulls(ctx context.Context, db DBTX, battleID uuid.UUID) ([]domain.BattlePull, error)

	// FindBattleForPull returns the parent battle of the battle pull
	// referencing the given live pull, nil when none references it.
	FindBattleForPull(ctx context.Context, db DBTX, pullID uuid.UUID) (*domain.Battle, error)

	// DetachPull nulls the live reference on the battle pull while re-copying
	// the snapshot fields, preserving history when the pull is sold.
	DetachPull(ctx context.Context, tx pgx.Tx, pull *domain.Pull) error
}

// OrderRepository reads checkout and cart holds referencing pulls. The core
// never advances order status; it only gates on it and cleans up after sales.
type OrderRepository interface {
	// HasBlockingOrder reports whether any PAID/PROCESSING/SHIPPED/DELIVERED
	// order references the pull.
	HasBlockingOrder(ctx context.Context, db DBTX, pullID uuid.UUID) (bool, error)

	// DeleteNonBlockingItems removes order items of non-blocking orders
	// referencing the pull (cleanup during a sale).
	DeleteNonBlockingItems(ctx context.Context, tx pgx.Tx, pullID uuid.UUID) error

	// DeleteCartItems removes any cart entry referencing the pull.
	DeleteCartItems(ctx context.Context, tx pgx.Tx, pullID uuid.UUID) error
}

// CoinEntryRepository provides access to the append-only coin ledger.
type CoinEntryRepository interface {
	// Insert creates a ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.CoinEntry, error)

	// ListByAccount returns entries newest first.
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.CoinEntry, error)
}

// SaleHistoryRepository provides access to the append-only sale ledger.
type SaleHistoryRepository interface {
	Insert(ctx context.Context, db DBTX, sale *domain.SaleHistory) error
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID, limit int) ([]domain.SaleHistory, error)
}

// OutboxRepository writes events to the event_outbox table within the same
// transaction as the state change they describe. The poller in infra reads
// the table directly.
type OutboxRepository interface {
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}
