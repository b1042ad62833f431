package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/repository"
)

// fakeAccounts tracks a single in-memory account.
type fakeAccounts struct {
	account domain.Account
}

func (f *fakeAccounts) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Account, error) {
	if id != f.account.ID {
		return nil, nil
	}
	a := f.account
	return &a, nil
}

func (f *fakeAccounts) FindByUsername(ctx context.Context, db repository.DBTX, username string) (*domain.Account, error) {
	return nil, nil
}

func (f *fakeAccounts) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	return f.FindByID(ctx, nil, id)
}

func (f *fakeAccounts) Create(ctx context.Context, db repository.DBTX, account *domain.Account) error {
	f.account = *account
	return nil
}

func (f *fakeAccounts) AdjustCoins(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Account, error) {
	f.account.Coins += delta
	a := f.account
	return &a, nil
}

func (f *fakeAccounts) ListBots(ctx context.Context, db repository.DBTX, battleID uuid.UUID, limit int) ([]domain.Account, error) {
	return nil, nil
}

// fakeEntries records inserted ledger rows.
type fakeEntries struct {
	inserted []domain.CoinEntry
}

func (f *fakeEntries) Insert(ctx context.Context, db repository.DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.CoinEntry, error) {
	entry := domain.CoinEntry{
		ID:           uuid.New(),
		AccountID:    params.AccountID,
		Type:         params.Type,
		Amount:       params.Amount,
		BalanceAfter: balanceAfter,
		ReferenceID:  params.ReferenceID,
		Metadata:     params.Metadata,
		CreatedAt:    time.Now().UTC(),
	}
	f.inserted = append(f.inserted, entry)
	return &entry, nil
}

func (f *fakeEntries) ListByAccount(ctx context.Context, db repository.DBTX, accountID uuid.UUID, limit int) ([]domain.CoinEntry, error) {
	return f.inserted, nil
}

// fakeOutbox records drafts.
type fakeOutbox struct {
	drafts []domain.OutboxDraft
}

func (f *fakeOutbox) Insert(ctx context.Context, db repository.DBTX, draft domain.OutboxDraft) error {
	f.drafts = append(f.drafts, draft)
	return nil
}

func newTestEngine(coins int64) (*Engine, *fakeAccounts, *fakeEntries, *fakeOutbox) {
	accounts := &fakeAccounts{account: domain.Account{ID: uuid.New(), Username: "tester", Coins: coins}}
	entries := &fakeEntries{}
	outbox := &fakeOutbox{}
	return NewEngine(accounts, entries, outbox), accounts, entries, outbox
}

func TestPostEntryDefaultsMetadata(t *testing.T) {
	engine, accounts, entries, outbox := newTestEngine(100)

	entry, updated, err := engine.PostEntry(context.Background(), nil, domain.PostEntryParams{
		AccountID: accounts.account.ID,
		Type:      domain.EntrySaleCredit,
		Amount:    40,
	})
	require.NoError(t, err)

	// Nil metadata must land as an empty object, never SQL NULL.
	assert.Equal(t, json.RawMessage(`{}`), entry.Metadata)
	assert.Equal(t, int64(140), updated.Coins)
	assert.Equal(t, int64(140), entry.BalanceAfter)
	require.Len(t, entries.inserted, 1)
	assert.Len(t, outbox.drafts, 1)
}

func TestPostEntryKeepsMetadata(t *testing.T) {
	engine, accounts, _, _ := newTestEngine(100)

	meta := json.RawMessage(`{"box_id":"b1"}`)
	entry, _, err := engine.PostEntry(context.Background(), nil, domain.PostEntryParams{
		AccountID: accounts.account.ID,
		Type:      domain.EntryPackOpen,
		Amount:    -50,
		Metadata:  meta,
	})
	require.NoError(t, err)
	assert.Equal(t, meta, entry.Metadata)
}

func TestExecuteCharge(t *testing.T) {
	t.Run("negates amount and debits", func(t *testing.T) {
		engine, accounts, _, _ := newTestEngine(100)

		entry, updated, err := engine.ExecuteCharge(context.Background(), nil, domain.PostEntryParams{
			AccountID: accounts.account.ID,
			Type:      domain.EntryPackOpen,
			Amount:    60,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(-60), entry.Amount)
		assert.Equal(t, int64(40), updated.Coins)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		engine, accounts, entries, _ := newTestEngine(30)

		_, _, err := engine.ExecuteCharge(context.Background(), nil, domain.PostEntryParams{
			AccountID: accounts.account.ID,
			Type:      domain.EntryPackOpen,
			Amount:    60,
		})
		require.Error(t, err)
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "INSUFFICIENT_FUNDS", appErr.Code)
		assert.Empty(t, entries.inserted)
		assert.Equal(t, int64(30), accounts.account.Coins)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		engine, accounts, _, _ := newTestEngine(100)

		_, _, err := engine.ExecuteCharge(context.Background(), nil, domain.PostEntryParams{
			AccountID: accounts.account.ID,
			Type:      domain.EntryPackOpen,
			Amount:    0,
		})
		require.Error(t, err)
	})
}

func TestExecuteCredit(t *testing.T) {
	t.Run("credits and snapshots balance", func(t *testing.T) {
		engine, accounts, _, _ := newTestEngine(10)

		entry, updated, err := engine.ExecuteCredit(context.Background(), nil, domain.PostEntryParams{
			AccountID: accounts.account.ID,
			Type:      domain.EntrySignupGrant,
			Amount:    250,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(250), entry.Amount)
		assert.Equal(t, int64(260), updated.Coins)
		assert.Equal(t, int64(260), entry.BalanceAfter)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		engine, accounts, _, _ := newTestEngine(10)

		_, _, err := engine.ExecuteCredit(context.Background(), nil, domain.PostEntryParams{
			AccountID: accounts.account.ID,
			Type:      domain.EntrySaleCredit,
			Amount:    -5,
		})
		require.Error(t, err)
	})

	t.Run("unknown account", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(10)

		_, _, err := engine.ExecuteCredit(context.Background(), nil, domain.PostEntryParams{
			AccountID: uuid.New(),
			Type:      domain.EntrySaleCredit,
			Amount:    5,
		})
		require.Error(t, err)
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}
