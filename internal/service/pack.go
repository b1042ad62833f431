package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/gacha"
	"github.com/packvault/platform/internal/infra"
	"github.com/packvault/platform/internal/ledger"
	"github.com/packvault/platform/internal/repository"
)

// PackService opens packs and exposes box previews.
type PackService struct {
	pool   *pgxpool.Pool
	engine *ledger.Engine
	boxes  repository.BoxRepository
	pulls  repository.PullRepository
	outbox repository.OutboxRepository
	rng    gacha.RandomSource
	logger *slog.Logger
}

// NewPackService creates a PackService.
func NewPackService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	boxes repository.BoxRepository,
	pulls repository.PullRepository,
	outbox repository.OutboxRepository,
	rng gacha.RandomSource,
	logger *slog.Logger,
) *PackService {
	return &PackService{
		pool:   pool,
		engine: engine,
		boxes:  boxes,
		pulls:  pulls,
		outbox: outbox,
		rng:    rng,
		logger: logger,
	}
}

// DrawnItem pairs a created pull with the weight it was drawn at. Weights are
// not stored on the pull row, so the response snapshots them here.
type DrawnItem struct {
	domain.Pull
	PullRate float64 `json:"pull_rate"`
}

// OpenResult is the outcome of a pack opening.
type OpenResult struct {
	Pulls     []DrawnItem `json:"pulls"`
	TotalCost int64       `json:"total_cost"`
	Balance   int64       `json:"balance"`
}

// Open purchases and opens quantity packs of a box in a single transaction:
// lock account, funds check, debit, counter bump, draws, pull inserts.
// Either the buyer pays and receives every item, or nothing happened.
func (s *PackService) Open(ctx context.Context, accountID, boxID uuid.UUID, quantity int) (*OpenResult, error) {
	if err := domain.ValidatePackQuantity(quantity); err != nil {
		return nil, domain.ErrInvalidQuantity(quantity)
	}

	box, err := s.boxes.FindByID(ctx, s.pool, boxID)
	if err != nil {
		return nil, domain.ErrInternal("find box", err)
	}
	if box == nil || !box.Active {
		return nil, domain.ErrNotFound("box", boxID.String())
	}
	if !box.HasDrawableItem() {
		return nil, domain.ErrEmptyPool("box has no drawable items")
	}

	entries := poolEntries(box)
	totalCost := box.Price * int64(quantity)

	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	refID := box.ID
	_, account, err := s.engine.ExecuteCharge(ctx, tx, domain.PostEntryParams{
		AccountID:   accountID,
		Type:        domain.EntryPackOpen,
		Amount:      totalCost,
		ReferenceID: &refID,
		Metadata:    mustJSON(map[string]interface{}{"box_id": box.ID, "quantity": quantity}),
	})
	if err != nil {
		return nil, err
	}

	if err := s.boxes.IncrementOpens(ctx, tx, box.ID, quantity); err != nil {
		return nil, domain.ErrInternal("increment opens", err)
	}

	drawCount := box.ItemsPerPack * quantity
	now := time.Now().UTC()
	pulls := make([]DrawnItem, 0, drawCount)
	for i := 0; i < drawCount; i++ {
		entry, err := gacha.Draw(entries, s.rng)
		if err != nil {
			return nil, domain.ErrEmptyPool(err.Error())
		}
		item := itemByID(box, entry.ID)
		if item == nil {
			return nil, domain.ErrInternal("drawn item missing from pool", nil)
		}
		pull := domain.Pull{
			ID:        uuid.New(),
			AccountID: accountID,
			BoxID:     box.ID,
			ItemID:    item.ID,
			Kind:      item.Kind,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			SetName:   item.SetName,
			Rarity:    item.Rarity,
			CoinValue: item.CoinValue,
			CreatedAt: now,
		}
		if err := s.pulls.Insert(ctx, tx, &pull); err != nil {
			return nil, domain.ErrInternal("insert pull", err)
		}
		pulls = append(pulls, DrawnItem{Pull: pull, PullRate: item.PullRate})
	}

	event := domain.NewPackOpenedEvent(accountID, box.ID, quantity, len(pulls), totalCost)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return &OpenResult{
		Pulls:     pulls,
		TotalCost: totalCost,
		Balance:   account.Coins,
	}, nil
}

// ListBoxes returns active boxes for browsing. Untransacted preview read.
func (s *PackService) ListBoxes(ctx context.Context) ([]domain.Box, error) {
	boxes, err := s.boxes.ListActive(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list boxes", err)
	}
	return boxes, nil
}

// GetBox returns one box with its item pool.
func (s *PackService) GetBox(ctx context.Context, boxID uuid.UUID) (*domain.Box, error) {
	box, err := s.boxes.FindByID(ctx, s.pool, boxID)
	if err != nil {
		return nil, domain.ErrInternal("find box", err)
	}
	if box == nil {
		return nil, domain.ErrNotFound("box", boxID.String())
	}
	return box, nil
}

// poolEntries converts a box's items to draw entries. Rates are relative
// weights, not normalized probabilities.
func poolEntries(box *domain.Box) []gacha.Entry {
	entries := make([]gacha.Entry, 0, len(box.Items))
	for _, item := range box.Items {
		entries = append(entries, gacha.Entry{
			ID:     item.ID,
			Weight: item.PullRate,
			Value:  item.CoinValue,
		})
	}
	return entries
}

func itemByID(box *domain.Box, id uuid.UUID) *domain.BoxItem {
	for i := range box.Items {
		if box.Items[i].ID == id {
			return &box.Items[i]
		}
	}
	return nil
}
