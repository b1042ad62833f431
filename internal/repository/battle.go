package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/packvault/platform/internal/domain"
)

type battleRepo struct{}

// NewBattleRepository returns a pgx-backed BattleRepository.
func NewBattleRepository() BattleRepository {
	return &battleRepo{}
}

const battleColumns = `id, status, format, mode, box_id, created_by, team_size, team_count,
	max_participants, rounds, entry_fee, total_prize, winner_id, winning_team, created_at, finished_at`

func (r *battleRepo) Insert(ctx context.Context, db DBTX, b *domain.Battle) error {
	_, err := db.Exec(ctx, `
		INSERT INTO battles (id, status, format, mode, box_id, created_by, team_size, team_count,
			max_participants, rounds, entry_fee, total_prize, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.Status, b.Format, b.Mode, b.BoxID, b.CreatedBy, b.TeamSize, b.TeamCount,
		b.MaxParticipants, b.Rounds, b.EntryFee, b.TotalPrize, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert battle: %w", err)
	}
	return nil
}

func (r *battleRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Battle, error) {
	row := db.QueryRow(ctx, `
		SELECT `+battleColumns+`
		FROM battles WHERE id = $1`, id)
	return scanBattle(row)
}

func (r *battleRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Battle, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+battleColumns+`
		FROM battles WHERE id = $1 FOR UPDATE`, id)
	return scanBattle(row)
}

func (r *battleRepo) List(ctx context.Context, db DBTX, status domain.BattleStatus, limit int) ([]domain.Battle, error) {
	query := `
		SELECT ` + battleColumns + `
		FROM battles`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	var battles []domain.Battle
	for rows.Next() {
		b, err := scanBattle(rows)
		if err != nil {
			return nil, err
		}
		battles = append(battles, *b)
	}
	return battles, rows.Err()
}

func (r *battleRepo) InsertParticipant(ctx context.Context, db DBTX, p *domain.BattleParticipant) error {
	_, err := db.Exec(ctx, `
		INSERT INTO battle_participants (id, battle_id, account_id, team_number, total_value, rounds_pulled, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.BattleID, p.AccountID, p.TeamNumber, p.TotalValue, p.RoundsPulled, p.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *battleRepo) ListParticipants(ctx context.Context, db DBTX, battleID uuid.UUID) ([]domain.BattleParticipant, error) {
	rows, err := db.Query(ctx, `
		SELECT id, battle_id, account_id, team_number, total_value, rounds_pulled, joined_at
		FROM battle_participants WHERE battle_id = $1
		ORDER BY joined_at ASC, id ASC`, battleID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.BattleParticipant
	for rows.Next() {
		var p domain.BattleParticipant
		if err := rows.Scan(&p.ID, &p.BattleID, &p.AccountID, &p.TeamNumber,
			&p.TotalValue, &p.RoundsPulled, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *battleRepo) FindParticipant(ctx context.Context, db DBTX, battleID, accountID uuid.UUID) (*domain.BattleParticipant, error) {
	row := db.QueryRow(ctx, `
		SELECT id, battle_id, account_id, team_number, total_value, rounds_pulled, joined_at
		FROM battle_participants WHERE battle_id = $1 AND account_id = $2`, battleID, accountID)

	var p domain.BattleParticipant
	err := row.Scan(&p.ID, &p.BattleID, &p.AccountID, &p.TeamNumber, &p.TotalValue, &p.RoundsPulled, &p.JoinedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	return &p, nil
}

func (r *battleRepo) CountParticipants(ctx context.Context, db DBTX, battleID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT count(*) FROM battle_participants WHERE battle_id = $1`, battleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (r *battleRepo) MarkInProgress(ctx context.Context, tx pgx.Tx, battleID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE battles SET status = $1
		WHERE id = $2 AND status = $3`,
		domain.BattleInProgress, battleID, domain.BattleWaiting)
	if err != nil {
		return false, fmt.Errorf("mark in progress: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkFinishedIfComplete is the finalization race guard: the status flip is
// conditional on every participant having pulled all rounds, so of N
// concurrent last-round writers exactly one sees RowsAffected == 1.
func (r *battleRepo) MarkFinishedIfComplete(ctx context.Context, tx pgx.Tx, battleID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE battles SET status = $1, finished_at = now()
		WHERE id = $2 AND status = $3
		AND NOT EXISTS (
			SELECT 1 FROM battle_participants bp
			WHERE bp.battle_id = battles.id AND bp.rounds_pulled < battles.rounds
		)`,
		domain.BattleFinished, battleID, domain.BattleInProgress)
	if err != nil {
		return false, fmt.Errorf("mark finished: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *battleRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, battleID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE battles SET status = $1, finished_at = now()
		WHERE id = $2 AND status = $3`,
		domain.BattleCancelled, battleID, domain.BattleWaiting)
	if err != nil {
		return false, fmt.Errorf("mark cancelled: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *battleRepo) SetResult(ctx context.Context, tx pgx.Tx, battleID, winnerID uuid.UUID, winningTeam *int) error {
	_, err := tx.Exec(ctx, `
		UPDATE battles SET winner_id = $1, winning_team = $2 WHERE id = $3`,
		winnerID, winningTeam, battleID)
	if err != nil {
		return fmt.Errorf("set battle result: %w", err)
	}
	return nil
}

func (r *battleRepo) RecordRound(ctx context.Context, tx pgx.Tx, participantID uuid.UUID, value int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE battle_participants
		SET rounds_pulled = rounds_pulled + 1, total_value = total_value + $1
		WHERE id = $2`, value, participantID)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	return nil
}

func (r *battleRepo) AddPrize(ctx context.Context, tx pgx.Tx, battleID uuid.UUID, value int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE battles SET total_prize = total_prize + $1 WHERE id = $2`, value, battleID)
	if err != nil {
		return fmt.Errorf("add prize: %w", err)
	}
	return nil
}

func (r *battleRepo) InsertBattlePull(ctx context.Context, db DBTX, bp *domain.BattlePull) error {
	_, err := db.Exec(ctx, `
		INSERT INTO battle_pulls (id, battle_id, participant_id, round_number, pull_id,
			name, image_url, set_name, rarity, coin_value, pulled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		bp.ID, bp.BattleID, bp.ParticipantID, bp.RoundNumber, bp.PullID,
		bp.Name, bp.ImageURL, bp.SetName, bp.Rarity, bp.CoinValue, bp.PulledAt,
	)
	if err != nil {
		return fmt.Errorf("insert battle pull: %w", err)
	}
	return nil
}

func (r *battleRepo) ListBattlePulls(ctx context.Context, db DBTX, battleID uuid.UUID) ([]domain.BattlePull, error) {
	rows, err := db.Query(ctx, `
		SELECT id, battle_id, participant_id, round_number, pull_id,
			name, image_url, set_name, rarity, coin_value, pulled_at
		FROM battle_pulls WHERE battle_id = $1
		ORDER BY pulled_at ASC, id ASC`, battleID)
	if err != nil {
		return nil, fmt.Errorf("list battle pulls: %w", err)
	}
	defer rows.Close()

	var pulls []domain.BattlePull
	for rows.Next() {
		var bp domain.BattlePull
		if err := rows.Scan(&bp.ID, &bp.BattleID, &bp.ParticipantID, &bp.RoundNumber, &bp.PullID,
			&bp.Name, &bp.ImageURL, &bp.SetName, &bp.Rarity, &bp.CoinValue, &bp.PulledAt); err != nil {
			return nil, fmt.Errorf("scan battle pull: %w", err)
		}
		pulls = append(pulls, bp)
	}
	return pulls, rows.Err()
}

func (r *battleRepo) FindBattleForPull(ctx context.Context, db DBTX, pullID uuid.UUID) (*domain.Battle, error) {
	row := db.QueryRow(ctx, `
		SELECT b.id, b.status, b.format, b.mode, b.box_id, b.created_by, b.team_size, b.team_count,
			b.max_participants, b.rounds, b.entry_fee, b.total_prize, b.winner_id, b.winning_team,
			b.created_at, b.finished_at
		FROM battles b
		JOIN battle_pulls bp ON bp.battle_id = b.id
		WHERE bp.pull_id = $1`, pullID)
	return scanBattle(row)
}

func (r *battleRepo) DetachPull(ctx context.Context, tx pgx.Tx, pull *domain.Pull) error {
	_, err := tx.Exec(ctx, `
		UPDATE battle_pulls
		SET pull_id = NULL, name = $1, image_url = $2, set_name = $3, rarity = $4, coin_value = $5
		WHERE pull_id = $6`,
		pull.Name, pull.ImageURL, pull.SetName, pull.Rarity, pull.CoinValue, pull.ID)
	if err != nil {
		return fmt.Errorf("detach battle pull: %w", err)
	}
	return nil
}

func scanBattle(row pgx.Row) (*domain.Battle, error) {
	var b domain.Battle
	err := row.Scan(&b.ID, &b.Status, &b.Format, &b.Mode, &b.BoxID, &b.CreatedBy,
		&b.TeamSize, &b.TeamCount, &b.MaxParticipants, &b.Rounds, &b.EntryFee,
		&b.TotalPrize, &b.WinnerID, &b.WinningTeam, &b.CreatedAt, &b.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan battle: %w", err)
	}
	return &b, nil
}
