package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packvault/platform/internal/domain"
	"github.com/packvault/platform/internal/gacha"
	"github.com/packvault/platform/internal/infra"
	"github.com/packvault/platform/internal/ledger"
	"github.com/packvault/platform/internal/repository"
	"github.com/packvault/platform/internal/settlement"
)

// BattleService drives the battle lifecycle: create, join, per-round pulls,
// simulation, cancellation and settlement.
type BattleService struct {
	pool    *pgxpool.Pool
	engine  *ledger.Engine
	battles repository.BattleRepository
	boxes   repository.BoxRepository
	pulls   repository.PullRepository
	outbox  repository.OutboxRepository
	bots    *BotProvisioner
	rng     gacha.RandomSource
	logger  *slog.Logger
}

// NewBattleService creates a BattleService.
func NewBattleService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	battles repository.BattleRepository,
	boxes repository.BoxRepository,
	pulls repository.PullRepository,
	outbox repository.OutboxRepository,
	bots *BotProvisioner,
	rng gacha.RandomSource,
	logger *slog.Logger,
) *BattleService {
	return &BattleService{
		pool:    pool,
		engine:  engine,
		battles: battles,
		boxes:   boxes,
		pulls:   pulls,
		outbox:  outbox,
		bots:    bots,
		rng:     rng,
		logger:  logger,
	}
}

// CreateInput holds the battle creation request fields.
type CreateInput struct {
	BoxID           uuid.UUID           `json:"box_id"`
	Format          domain.BattleFormat `json:"format"`
	Mode            domain.BattleMode   `json:"mode"`
	Rounds          int                 `json:"rounds"`
	MaxParticipants int                 `json:"max_participants"`
	EntryFee        int64               `json:"entry_fee"`
	TeamSize        int                 `json:"team_size"`
	TeamCount       int                 `json:"team_count"`
}

// Create validates the configuration, debits the creator for their seat and
// inserts the battle in WAITING with the creator as first participant.
func (s *BattleService) Create(ctx context.Context, creatorID uuid.UUID, input CreateInput) (*domain.Battle, error) {
	battle := &domain.Battle{
		ID:              uuid.New(),
		Status:          domain.BattleWaiting,
		Format:          input.Format,
		Mode:            input.Mode,
		BoxID:           input.BoxID,
		CreatedBy:       creatorID,
		TeamSize:        input.TeamSize,
		TeamCount:       input.TeamCount,
		MaxParticipants: input.MaxParticipants,
		Rounds:          input.Rounds,
		EntryFee:        input.EntryFee,
		CreatedAt:       time.Now().UTC(),
	}
	if err := domain.ValidateBattleConfig(battle); err != nil {
		return nil, domain.ErrInvalidConfiguration(err.Error())
	}

	box, err := s.boxes.FindByID(ctx, s.pool, input.BoxID)
	if err != nil {
		return nil, domain.ErrInternal("find box", err)
	}
	if box == nil || !box.Active {
		return nil, domain.ErrNotFound("box", input.BoxID.String())
	}
	if !box.HasDrawableItem() {
		return nil, domain.ErrEmptyPool("box has no drawable items")
	}

	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.chargeSeat(ctx, tx, battle, box, creatorID); err != nil {
		return nil, err
	}

	if err := s.battles.Insert(ctx, tx, battle); err != nil {
		return nil, domain.ErrInternal("insert battle", err)
	}

	creator := &domain.BattleParticipant{
		ID:         uuid.New(),
		BattleID:   battle.ID,
		AccountID:  creatorID,
		TeamNumber: 1,
		JoinedAt:   time.Now().UTC(),
	}
	if err := s.battles.InsertParticipant(ctx, tx, creator); err != nil {
		return nil, domain.ErrInternal("insert participant", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewBattleCreatedEvent(battle)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return battle, nil
}

// Join seats an account in a WAITING battle, debiting the full seat cost. The
// join that fills the last seat flips the battle to IN_PROGRESS in the same
// transaction.
func (s *BattleService) Join(ctx context.Context, battleID, accountID uuid.UUID) (*domain.Battle, error) {
	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	battle, err := s.battles.LockForUpdate(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("lock battle", err)
	}
	if battle == nil {
		return nil, domain.ErrNotFound("battle", battleID.String())
	}
	if battle.Status != domain.BattleWaiting {
		return nil, domain.ErrStateConflict("battle is not accepting participants")
	}

	existing, err := s.battles.FindParticipant(ctx, tx, battleID, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find participant", err)
	}
	if existing != nil {
		return nil, domain.ErrStateConflict("already joined this battle")
	}

	count, err := s.battles.CountParticipants(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("count participants", err)
	}
	if count >= battle.MaxParticipants {
		return nil, domain.ErrStateConflict("battle is full")
	}

	box, err := s.boxes.FindByID(ctx, tx, battle.BoxID)
	if err != nil {
		return nil, domain.ErrInternal("find box", err)
	}
	if box == nil {
		return nil, domain.ErrNotFound("box", battle.BoxID.String())
	}

	if err := s.chargeSeat(ctx, tx, battle, box, accountID); err != nil {
		return nil, err
	}

	participant := &domain.BattleParticipant{
		ID:         uuid.New(),
		BattleID:   battleID,
		AccountID:  accountID,
		TeamNumber: domain.NextTeamNumber(count, battle.EffectiveTeamCount()),
		JoinedAt:   time.Now().UTC(),
	}
	if err := s.battles.InsertParticipant(ctx, tx, participant); err != nil {
		return nil, domain.ErrInternal("insert participant", err)
	}

	if count+1 == battle.MaxParticipants {
		started, err := s.battles.MarkInProgress(ctx, tx, battleID)
		if err != nil {
			return nil, domain.ErrInternal("mark in progress", err)
		}
		if started {
			battle.Status = domain.BattleInProgress
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return battle, nil
}

// PullRoundResult is the outcome of one battle round.
type PullRoundResult struct {
	Pull        domain.BattlePull `json:"pull"`
	RoundNumber int               `json:"round_number"`
	Finished    bool              `json:"finished"`
}

// PullRound performs one draw for the calling participant. The last pull of
// the battle triggers settlement inside the same transaction; of concurrent
// last-round pullers exactly one settles.
func (s *BattleService) PullRound(ctx context.Context, battleID, accountID uuid.UUID) (*PullRoundResult, error) {
	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	battle, err := s.battles.LockForUpdate(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("lock battle", err)
	}
	if battle == nil {
		return nil, domain.ErrNotFound("battle", battleID.String())
	}
	if battle.Status != domain.BattleInProgress {
		return nil, domain.ErrStateConflict("battle is not in progress")
	}

	participant, err := s.battles.FindParticipant(ctx, tx, battleID, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find participant", err)
	}
	if participant == nil {
		return nil, domain.ErrNotFound("participant", accountID.String())
	}
	if participant.RoundsPulled >= battle.Rounds {
		return nil, domain.ErrStateConflict("all rounds already pulled")
	}

	box, err := s.boxes.FindByID(ctx, tx, battle.BoxID)
	if err != nil {
		return nil, domain.ErrInternal("find box", err)
	}
	if box == nil || !box.HasDrawableItem() {
		return nil, domain.ErrEmptyPool("box has no drawable items")
	}

	bp, err := s.pullOneRound(ctx, tx, battle, box, participant)
	if err != nil {
		return nil, err
	}

	finished, err := s.tryFinalize(ctx, tx, battle)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return &PullRoundResult{
		Pull:        *bp,
		RoundNumber: bp.RoundNumber,
		Finished:    finished,
	}, nil
}

// Simulate fills the remaining seats with funded bots and plays every
// participant to completion in one transaction. Admin only; enforced at the
// routing layer and re-checked here.
func (s *BattleService) Simulate(ctx context.Context, battleID, adminID uuid.UUID, role domain.Role) (*domain.Battle, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrForbidden("simulate requires admin role")
	}

	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	battle, err := s.battles.LockForUpdate(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("lock battle", err)
	}
	if battle == nil {
		return nil, domain.ErrNotFound("battle", battleID.String())
	}
	if battle.Status != domain.BattleWaiting {
		return nil, domain.ErrStateConflict("only waiting battles can be simulated")
	}

	box, err := s.boxes.FindByID(ctx, tx, battle.BoxID)
	if err != nil {
		return nil, domain.ErrInternal("find box", err)
	}
	if box == nil || !box.HasDrawableItem() {
		return nil, domain.ErrEmptyPool("box has no drawable items")
	}

	count, err := s.battles.CountParticipants(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("count participants", err)
	}

	seatCost := battle.TotalCost(box.Price)
	bots, err := s.bots.EnsureBots(ctx, tx, battle.ID, battle.MaxParticipants-count, seatCost)
	if err != nil {
		return nil, err
	}

	for _, bot := range bots {
		if err := s.chargeSeat(ctx, tx, battle, box, bot.ID); err != nil {
			return nil, err
		}
		participant := &domain.BattleParticipant{
			ID:         uuid.New(),
			BattleID:   battleID,
			AccountID:  bot.ID,
			TeamNumber: domain.NextTeamNumber(count, battle.EffectiveTeamCount()),
			JoinedAt:   time.Now().UTC(),
		}
		if err := s.battles.InsertParticipant(ctx, tx, participant); err != nil {
			return nil, domain.ErrInternal("insert participant", err)
		}
		count++
	}

	started, err := s.battles.MarkInProgress(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("mark in progress", err)
	}
	if !started {
		return nil, domain.ErrStateConflict("battle left waiting state during simulation")
	}
	battle.Status = domain.BattleInProgress

	participants, err := s.battles.ListParticipants(ctx, tx, battleID)
	if err != nil {
		return nil, domain.ErrInternal("list participants", err)
	}

	for round := 0; round < battle.Rounds; round++ {
		for i := range participants {
			if participants[i].RoundsPulled >= battle.Rounds {
				continue
			}
			if _, err := s.pullOneRound(ctx, tx, battle, box, &participants[i]); err != nil {
				return nil, err
			}
		}
	}

	finished, err := s.tryFinalize(ctx, tx, battle)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, domain.ErrInternal("simulated battle did not finalize", nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return s.Get(ctx, battleID)
}

// Cancel refunds every participant their full seat cost and marks the battle
// CANCELLED. Only WAITING battles can be cancelled, by their creator or an
// admin.
func (s *BattleService) Cancel(ctx context.Context, battleID, callerID uuid.UUID, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, infra.OperationTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	battle, err := s.battles.LockForUpdate(ctx, tx, battleID)
	if err != nil {
		return domain.ErrInternal("lock battle", err)
	}
	if battle == nil {
		return domain.ErrNotFound("battle", battleID.String())
	}
	if battle.CreatedBy != callerID && role != domain.RoleAdmin {
		return domain.ErrForbidden("only the creator or an admin can cancel")
	}

	cancelled, err := s.battles.MarkCancelled(ctx, tx, battleID)
	if err != nil {
		return domain.ErrInternal("mark cancelled", err)
	}
	if !cancelled {
		return domain.ErrStateConflict("only waiting battles can be cancelled")
	}

	box, err := s.boxes.FindByID(ctx, tx, battle.BoxID)
	if err != nil {
		return domain.ErrInternal("find box", err)
	}
	if box == nil {
		return domain.ErrNotFound("box", battle.BoxID.String())
	}

	participants, err := s.battles.ListParticipants(ctx, tx, battleID)
	if err != nil {
		return domain.ErrInternal("list participants", err)
	}

	seatCost := battle.TotalCost(box.Price)
	var refunded int64
	for _, p := range participants {
		refID := battle.ID
		_, _, err := s.engine.ExecuteCredit(ctx, tx, domain.PostEntryParams{
			AccountID:   p.AccountID,
			Type:        domain.EntryBattleRefund,
			Amount:      seatCost,
			ReferenceID: &refID,
			Metadata:    mustJSON(map[string]interface{}{"battle_id": battle.ID}),
		})
		if err != nil {
			return err
		}
		refunded += seatCost
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewBattleCancelledEvent(battleID, refunded)); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}

	return tx.Commit(ctx)
}

// BattleDetail is a battle with its seats and round history.
type BattleDetail struct {
	Battle       domain.Battle              `json:"battle"`
	Participants []domain.BattleParticipant `json:"participants"`
	Pulls        []domain.BattlePull        `json:"pulls"`
}

// Get returns a battle with participants and round history.
func (s *BattleService) Get(ctx context.Context, battleID uuid.UUID) (*domain.Battle, error) {
	battle, err := s.battles.FindByID(ctx, s.pool, battleID)
	if err != nil {
		return nil, domain.ErrInternal("find battle", err)
	}
	if battle == nil {
		return nil, domain.ErrNotFound("battle", battleID.String())
	}
	return battle, nil
}

// GetDetail returns a battle with participants and round history.
func (s *BattleService) GetDetail(ctx context.Context, battleID uuid.UUID) (*BattleDetail, error) {
	battle, err := s.Get(ctx, battleID)
	if err != nil {
		return nil, err
	}
	participants, err := s.battles.ListParticipants(ctx, s.pool, battleID)
	if err != nil {
		return nil, domain.ErrInternal("list participants", err)
	}
	pulls, err := s.battles.ListBattlePulls(ctx, s.pool, battleID)
	if err != nil {
		return nil, domain.ErrInternal("list battle pulls", err)
	}
	return &BattleDetail{Battle: *battle, Participants: participants, Pulls: pulls}, nil
}

// List returns battles, optionally filtered by status.
func (s *BattleService) List(ctx context.Context, status domain.BattleStatus, limit int) ([]domain.Battle, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	battles, err := s.battles.List(ctx, s.pool, status, limit)
	if err != nil {
		return nil, domain.ErrInternal("list battles", err)
	}
	return battles, nil
}

// chargeSeat debits one participant the full seat cost: entry fee plus a
// pre-paid pack per round.
func (s *BattleService) chargeSeat(ctx context.Context, tx pgx.Tx, battle *domain.Battle, box *domain.Box, accountID uuid.UUID) error {
	seatCost := battle.TotalCost(box.Price)
	if seatCost <= 0 {
		return nil
	}
	refID := battle.ID
	_, _, err := s.engine.ExecuteCharge(ctx, tx, domain.PostEntryParams{
		AccountID:   accountID,
		Type:        domain.EntryBattleEntry,
		Amount:      seatCost,
		ReferenceID: &refID,
		Metadata:    mustJSON(map[string]interface{}{"battle_id": battle.ID, "rounds": battle.Rounds}),
	})
	return err
}

// pullOneRound draws one item for a participant: live pull owned by the
// puller, immutable battle_pull snapshot, participant and prize pool bumps.
func (s *BattleService) pullOneRound(ctx context.Context, tx pgx.Tx, battle *domain.Battle, box *domain.Box, participant *domain.BattleParticipant) (*domain.BattlePull, error) {
	entry, err := gacha.Draw(poolEntries(box), s.rng)
	if err != nil {
		return nil, domain.ErrEmptyPool(err.Error())
	}
	item := itemByID(box, entry.ID)
	if item == nil {
		return nil, domain.ErrInternal("drawn item missing from pool", nil)
	}

	now := time.Now().UTC()
	pull := &domain.Pull{
		ID:        uuid.New(),
		AccountID: participant.AccountID,
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
	if err := s.pulls.Insert(ctx, tx, pull); err != nil {
		return nil, domain.ErrInternal("insert pull", err)
	}

	pullID := pull.ID
	bp := &domain.BattlePull{
		ID:            uuid.New(),
		BattleID:      battle.ID,
		ParticipantID: participant.ID,
		RoundNumber:   participant.RoundsPulled + 1,
		PullID:        &pullID,
		Name:          item.Name,
		ImageURL:      item.ImageURL,
		SetName:       item.SetName,
		Rarity:        item.Rarity,
		CoinValue:     item.CoinValue,
		PulledAt:      now,
	}
	if err := s.battles.InsertBattlePull(ctx, tx, bp); err != nil {
		return nil, domain.ErrInternal("insert battle pull", err)
	}

	if err := s.battles.RecordRound(ctx, tx, participant.ID, item.CoinValue); err != nil {
		return nil, domain.ErrInternal("record round", err)
	}
	participant.RoundsPulled++
	participant.TotalValue += item.CoinValue

	if err := s.battles.AddPrize(ctx, tx, battle.ID, item.CoinValue); err != nil {
		return nil, domain.ErrInternal("add prize", err)
	}
	battle.TotalPrize += item.CoinValue

	return bp, nil
}

// tryFinalize attempts the conditional FINISHED flip and, when this
// transaction wins the race, runs settlement: winner resolution, prize split,
// pull reassignment, payout and result write. A settlement failure aborts the
// whole transaction so nothing is paid.
func (s *BattleService) tryFinalize(ctx context.Context, tx pgx.Tx, battle *domain.Battle) (bool, error) {
	won, err := s.battles.MarkFinishedIfComplete(ctx, tx, battle.ID)
	if err != nil {
		return false, domain.ErrInternal("mark finished", err)
	}
	if !won {
		return false, nil
	}

	participants, err := s.battles.ListParticipants(ctx, tx, battle.ID)
	if err != nil {
		return false, domain.ErrInternal("list participants", err)
	}
	battlePulls, err := s.battles.ListBattlePulls(ctx, tx, battle.ID)
	if err != nil {
		return false, domain.ErrInternal("list battle pulls", err)
	}

	resolution, err := settlement.Resolve(battle, participants, battlePulls)
	if err != nil {
		return false, domain.ErrUnresolvedWinner(err.Error())
	}

	shares, err := settlement.SplitPrize(battle.TotalPrize, len(resolution.Winners))
	if err != nil {
		return false, domain.ErrInternal("split prize", err)
	}

	for pullID, winnerID := range settlement.AssignPulls(resolution.Winners, battlePulls) {
		if err := s.pulls.UpdateOwner(ctx, tx, pullID, winnerID); err != nil {
			return false, domain.ErrInternal("reassign pull", err)
		}
	}

	refID := battle.ID
	for i, winner := range resolution.Winners {
		if shares[i] <= 0 {
			continue
		}
		_, _, err := s.engine.ExecuteCredit(ctx, tx, domain.PostEntryParams{
			AccountID:   winner.AccountID,
			Type:        domain.EntryBattlePrize,
			Amount:      shares[i],
			ReferenceID: &refID,
			Metadata:    mustJSON(map[string]interface{}{"battle_id": battle.ID, "share": shares[i]}),
		})
		if err != nil {
			return false, err
		}
	}

	primaryID := resolution.Primary.AccountID
	if err := s.battles.SetResult(ctx, tx, battle.ID, primaryID, resolution.WinningTeam); err != nil {
		return false, domain.ErrInternal("set result", err)
	}
	battle.Status = domain.BattleFinished
	battle.WinnerID = &primaryID
	battle.WinningTeam = resolution.WinningTeam

	event := domain.NewBattleFinishedEvent(battle, resolution.WinnerAccountIDs())
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return false, domain.ErrInternal("insert outbox event", err)
	}

	return true, nil
}
