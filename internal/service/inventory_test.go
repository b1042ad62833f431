package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packvault/platform/internal/domain"
)

func TestRejectionReason(t *testing.T) {
	t.Run("order hold", func(t *testing.T) {
		err := domain.ErrStateConflictCause("pull is held by an active order", domain.ErrSaleBlockedByOrder)
		reason, ok := rejectionReason(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectBlockedByOrder, reason)
	})

	t.Run("battle hold", func(t *testing.T) {
		err := domain.ErrStateConflictCause("pull belongs to an unfinished battle", domain.ErrSaleBlockedByBattle)
		reason, ok := rejectionReason(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectBlockedByBattle, reason)
	})

	t.Run("battle hold regardless of message", func(t *testing.T) {
		err := domain.ErrStateConflictCause("reworded conflict", domain.ErrSaleBlockedByBattle)
		reason, ok := rejectionReason(err)
		assert.True(t, ok)
		assert.Equal(t, domain.RejectBlockedByBattle, reason)
	})

	t.Run("missing pull", func(t *testing.T) {
		reason, ok := rejectionReason(domain.ErrNotFound("pull", "abc"))
		assert.True(t, ok)
		assert.Equal(t, domain.RejectNotFound, reason)
	})

	t.Run("unexpected error fails the batch", func(t *testing.T) {
		_, ok := rejectionReason(errors.New("connection reset"))
		assert.False(t, ok)

		_, ok = rejectionReason(domain.ErrInternal("insert sale", errors.New("boom")))
		assert.False(t, ok)
	})
}
