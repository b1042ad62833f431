package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packvault/platform/internal/domain"
)

func TestInMemoryStore_SetAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.Set(ctx, "k1", []byte("hello"), 0)
	require.NoError(t, err)

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)
}

func TestInMemoryStore_KeyNotFound(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), 0)
	_ = store.Delete(ctx, "k1")

	_, err := store.Get(ctx, "k1")
	assert.Error(t, err)
}

func TestInMemoryStore_TTLExpiry(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), 1*time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "k1")
	assert.Error(t, err)
}

func TestBalanceProjection_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, UpdateBalance(ctx, store, BalanceProjection{
		AccountID: "abc-123",
		Coins:     750,
	}))

	p, err := GetBalance(ctx, store, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, int64(750), p.Coins)
	assert.NotEmpty(t, p.UpdatedAt)

	require.NoError(t, InvalidateBalance(ctx, store, "abc-123"))
	_, err = GetBalance(ctx, store, "abc-123")
	assert.Error(t, err)
}

func TestBoxPopularity_Accumulates(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, AddBoxOpens(ctx, store, "box-1", 2))
	require.NoError(t, AddBoxOpens(ctx, store, "box-1", 3))

	p, err := GetBoxOpens(ctx, store, "box-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.Opens)
}

func TestApply_EntryPosted(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	accountID := uuid.New()
	entry := domain.CoinEntry{
		ID:           uuid.New(),
		AccountID:    accountID,
		Type:         domain.EntrySaleCredit,
		Amount:       40,
		BalanceAfter: 290,
	}
	payload, err := json.Marshal(entry)
	require.NoError(t, err)

	require.NoError(t, Apply(ctx, store, domain.EventEntryPosted, payload))

	p, err := GetBalance(ctx, store, accountID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(290), p.Coins)
}

func TestApply_PackOpened(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	payload := []byte(`{"box_id":"box-9","quantity":4}`)
	require.NoError(t, Apply(ctx, store, domain.EventPackOpened, payload))

	p, err := GetBoxOpens(ctx, store, "box-9")
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Opens)
}

func TestApply_UnknownEventSkipped(t *testing.T) {
	store := NewInMemoryStore()
	err := Apply(context.Background(), store, domain.EventType("vault.something.else"), []byte(`{}`))
	assert.NoError(t, err)
}
