package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidatePackQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		wantErr  bool
	}{
		{"one pack", 1, false},
		{"two packs", 2, false},
		{"three packs", 3, false},
		{"four packs", 4, false},
		{"five packs", 5, false},
		{"zero", 0, true},
		{"six packs", 6, true},
		{"negative", -1, true},
		{"huge", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackQuantity(tt.quantity)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "quantity must be between 1 and 5")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateBattleConfig(t *testing.T) {
	base := func() *Battle {
		return &Battle{
			Format:          FormatTeam,
			Mode:            ModeNormal,
			TeamSize:        2,
			TeamCount:       2,
			MaxParticipants: 4,
			Rounds:          3,
			EntryFee:        50,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Battle)
		wantErr bool
	}{
		{"valid team battle", func(b *Battle) {}, false},
		{"valid solo battle", func(b *Battle) {
			b.Format = FormatSolo
			b.TeamSize = 0
			b.TeamCount = 0
		}, false},
		{"valid upside down", func(b *Battle) { b.Mode = ModeUpsideDown }, false},
		{"valid jackpot", func(b *Battle) { b.Mode = ModeJackpot }, false},
		{"seats do not factor", func(b *Battle) { b.MaxParticipants = 5 }, true},
		{"unknown format", func(b *Battle) { b.Format = "DUO" }, true},
		{"unknown mode", func(b *Battle) { b.Mode = "CHAOS" }, true},
		{"zero rounds", func(b *Battle) { b.Rounds = 0 }, true},
		{"single seat", func(b *Battle) {
			b.Format = FormatSolo
			b.MaxParticipants = 1
		}, true},
		{"negative entry fee", func(b *Battle) { b.EntryFee = -1 }, true},
		{"single team", func(b *Battle) {
			b.TeamCount = 1
			b.TeamSize = 4
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base()
			tt.mutate(b)
			err := ValidateBattleConfig(b)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// --- Battle helpers ---

func TestNextTeamNumber_BreadthFirst(t *testing.T) {
	// 2 teams: seats fill 1,2,1,2 so an early-filled battle stays balanced.
	assert.Equal(t, 1, NextTeamNumber(0, 2))
	assert.Equal(t, 2, NextTeamNumber(1, 2))
	assert.Equal(t, 1, NextTeamNumber(2, 2))
	assert.Equal(t, 2, NextTeamNumber(3, 2))

	// 3 teams
	assert.Equal(t, 1, NextTeamNumber(0, 3))
	assert.Equal(t, 2, NextTeamNumber(1, 3))
	assert.Equal(t, 3, NextTeamNumber(2, 3))
	assert.Equal(t, 1, NextTeamNumber(3, 3))

	// solo battles collapse to a single dense team
	assert.Equal(t, 1, NextTeamNumber(0, 1))
	assert.Equal(t, 1, NextTeamNumber(5, 1))
	assert.Equal(t, 1, NextTeamNumber(5, 0))
}

func TestBattleTotalCost(t *testing.T) {
	b := &Battle{EntryFee: 100, Rounds: 3}
	// entry fee plus one pre-paid pack per round
	assert.Equal(t, int64(100+3*250), b.TotalCost(250))

	free := &Battle{EntryFee: 0, Rounds: 1}
	assert.Equal(t, int64(80), free.TotalCost(80))
}

func TestEffectiveTeamCount(t *testing.T) {
	assert.Equal(t, 3, (&Battle{Format: FormatTeam, TeamCount: 3}).EffectiveTeamCount())
	assert.Equal(t, 1, (&Battle{Format: FormatSolo, TeamCount: 0}).EffectiveTeamCount())
	assert.Equal(t, 1, (&Battle{Format: FormatSolo, TeamCount: 4}).EffectiveTeamCount())
}

// --- Order gating ---

func TestOrderStatusIsBlocking(t *testing.T) {
	blocking := []OrderStatus{OrderPaid, OrderProcessing, OrderShipped, OrderDelivered}
	for _, s := range blocking {
		assert.True(t, s.IsBlocking(), "status %s should block", s)
	}

	open := []OrderStatus{OrderPending, OrderCancelled, OrderRefunded}
	for _, s := range open {
		assert.False(t, s.IsBlocking(), "status %s should not block", s)
	}
}

// --- Box helpers ---

func TestBoxHasDrawableItem(t *testing.T) {
	empty := &Box{}
	assert.False(t, empty.HasDrawableItem())

	zeroWeight := &Box{Items: []BoxItem{{PullRate: 0}, {PullRate: 0}}}
	assert.False(t, zeroWeight.HasDrawableItem())

	mixed := &Box{Items: []BoxItem{{PullRate: 0}, {PullRate: 12.5}}}
	assert.True(t, mixed.HasDrawableItem())
}

// --- Errors ---

func TestAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"insufficient funds", ErrInsufficientFunds(), "INSUFFICIENT_FUNDS", 400},
		{"invalid quantity", ErrInvalidQuantity(9), "INVALID_QUANTITY", 400},
		{"invalid configuration", ErrInvalidConfiguration("bad"), "INVALID_CONFIGURATION", 400},
		{"empty pool", ErrEmptyPool("no items"), "EMPTY_POOL", 422},
		{"not found", ErrNotFound("pull", "abc"), "NOT_FOUND", 404},
		{"state conflict", ErrStateConflict("battle is full"), "STATE_CONFLICT", 409},
		{"unresolved winner", ErrUnresolvedWinner("empty battle"), "UNRESOLVED_WINNER", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := ErrInternal("boom", cause)
	assert.ErrorIs(t, err, cause)
}
