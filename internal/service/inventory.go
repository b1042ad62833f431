package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/infra"
	"github.com/packvault/platform/internal/ledger"
	"github.com/packvault/platform/internal/repository"
)

// InventoryService lists owned pulls and converts them back to coins.
type InventoryService struct {
	pool    *pgxpool.Pool
	engine  *ledger.Engine
	pulls   repository.PullRepository
	battles repository.BattleRepository
	orders  repository.OrderRepository
	sales   repository.SaleHistoryRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
}

// NewInventoryService creates an InventoryService.
func NewInventoryService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	pulls repository.PullRepository,
	battles repository.BattleRepository,
	orders repository.OrderRepository,
	sales repository.SaleHistoryRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		pool:    pool,
		engine:  engine,
		pulls:   pulls,
		battles: battles,
		orders:  orders,
		sales:   sales,
		outbox:  outbox,
		logger:  logger,
	}
}

// List returns the account's pulls, newest first.
func (s *InventoryService) List(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Pull, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	pulls, err := s.pulls.ListByAccount(ctx, s.pool, accountID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list pulls", err)
	}
	return pulls, nil
}

// SellResult is the outcome of a single sell.
type SellResult struct {
	PullID    uuid.UUID `json:"pull_id"`
	CoinValue int64     `json:"coin_value"`
	Balance   int64     `json:"balance"`
}

// Sell converts one pull back to coins. The pull row is deleted, so a second
// sell of the same id finds nothing and cannot double-credit.
func (s *InventoryService) Sell(ctx context.Context, accountID, pullID uuid.UUID) (*SellResult, error) {
	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	account, sale, err := s.sellOne(ctx, tx, accountID, pullID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return &SellResult{
		PullID:    pullID,
		CoinValue: sale.CoinValue,
		Balance:   account.Coins,
	}, nil
}

// BulkSellResult reports the partial outcome of a bulk sell.
type BulkSellResult struct {
	SoldIDs       []uuid.UUID            `json:"sold_ids"`
	TotalCredited int64                  `json:"total_credited"`
	Balance       int64                  `json:"balance"`
	Rejections    []domain.SellRejection `json:"rejections,omitempty"`
}

// BulkSell applies Sell per item. Blocked or missing items are reported as
// rejections; the rest of the batch still goes through.
func (s *InventoryService) BulkSell(ctx context.Context, accountID uuid.UUID, pullIDs []uuid.UUID) (*BulkSellResult, error) {
	if len(pullIDs) == 0 {
		return nil, domain.ErrValidation("no pull ids given")
	}

	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	result := &BulkSellResult{}
	for _, pullID := range pullIDs {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, domain.ErrInternal("begin tx", err)
		}

		account, sale, err := s.sellOne(ctx, tx, accountID, pullID)
		if err != nil {
			tx.Rollback(ctx)
			reason, ok := rejectionReason(err)
			if !ok {
				return nil, err
			}
			result.Rejections = append(result.Rejections, domain.SellRejection{PullID: pullID, Reason: reason})
			continue
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, domain.ErrInternal("commit tx", err)
		}

		result.SoldIDs = append(result.SoldIDs, pullID)
		result.TotalCredited += sale.CoinValue
		result.Balance = account.Coins
	}

	return result, nil
}

// sellOne runs the full sell sequence inside the caller's transaction:
// ownership check, sellability re-check, hold cleanup, battle history detach,
// pull delete, ledger credit, sale record, outbox event.
func (s *InventoryService) sellOne(ctx context.Context, tx pgx.Tx, accountID, pullID uuid.UUID) (*domain.Account, *domain.SaleHistory, error) {
	pull, err := s.pulls.FindOwned(ctx, tx, pullID, accountID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find pull", err)
	}
	if pull == nil {
		return nil, nil, domain.ErrNotFound("pull", pullID.String())
	}

	blocked, err := s.orders.HasBlockingOrder(ctx, tx, pullID)
	if err != nil {
		return nil, nil, domain.ErrInternal("check orders", err)
	}
	if blocked {
		return nil, nil, domain.ErrStateConflictCause("pull is held by an active order", domain.ErrSaleBlockedByOrder)
	}

	battle, err := s.battles.FindBattleForPull(ctx, tx, pullID)
	if err != nil {
		return nil, nil, domain.ErrInternal("check battle", err)
	}
	if battle != nil && battle.Status != domain.BattleFinished {
		return nil, nil, domain.ErrStateConflictCause("pull belongs to an unfinished battle", domain.ErrSaleBlockedByBattle)
	}

	if err := s.orders.DeleteCartItems(ctx, tx, pullID); err != nil {
		return nil, nil, domain.ErrInternal("delete cart items", err)
	}
	if err := s.orders.DeleteNonBlockingItems(ctx, tx, pullID); err != nil {
		return nil, nil, domain.ErrInternal("delete order items", err)
	}
	if battle != nil {
		if err := s.battles.DetachPull(ctx, tx, pull); err != nil {
			return nil, nil, domain.ErrInternal("detach battle pull", err)
		}
	}

	deleted, err := s.pulls.Delete(ctx, tx, pullID)
	if err != nil {
		return nil, nil, domain.ErrInternal("delete pull", err)
	}
	if !deleted {
		return nil, nil, domain.ErrNotFound("pull", pullID.String())
	}

	refID := pull.ID
	_, account, err := s.engine.ExecuteCredit(ctx, tx, domain.PostEntryParams{
		AccountID:   accountID,
		Type:        domain.EntrySaleCredit,
		Amount:      pull.CoinValue,
		ReferenceID: &refID,
		Metadata:    mustJSON(map[string]interface{}{"pull_id": pull.ID, "name": pull.Name}),
	})
	if err != nil {
		return nil, nil, err
	}

	sale := &domain.SaleHistory{
		ID:        uuid.New(),
		AccountID: accountID,
		PullID:    pull.ID,
		Name:      pull.Name,
		SetName:   pull.SetName,
		Rarity:    pull.Rarity,
		CoinValue: pull.CoinValue,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sales.Insert(ctx, tx, sale); err != nil {
		return nil, nil, domain.ErrInternal("insert sale", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewPullSoldEvent(sale)); err != nil {
		return nil, nil, domain.ErrInternal("insert outbox event", err)
	}

	return account, sale, nil
}

// rejectionReason maps a sell failure to a bulk rejection reason. Unexpected
// errors fail the whole batch instead.
func rejectionReason(err error) (domain.SellRejectionReason, bool) {
	switch {
	case errors.Is(err, domain.ErrSaleBlockedByOrder):
		return domain.RejectBlockedByOrder, true
	case errors.Is(err, domain.ErrSaleBlockedByBattle):
		return domain.RejectBlockedByBattle, true
	}
	if appErr, ok := err.(*domain.AppError); ok && appErr.Code == "NOT_FOUND" {
		return domain.RejectNotFound, true
	}
	return "", false
}

// SaleHistory returns the account's sale ledger, newest first.
func (s *InventoryService) SaleHistory(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.SaleHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sales, err := s.sales.ListByAccount(ctx, s.pool, accountID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list sales", err)
	}
	return sales, nil
}
