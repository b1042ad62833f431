package domain

import (
	"time"

	"github.com/google/uuid"
)

// BattleStatus enumerates the battle lifecycle states.
type BattleStatus string

const (
	BattleWaiting    BattleStatus = "WAITING"
	BattleInProgress BattleStatus = "IN_PROGRESS"
	BattleFinished   BattleStatus = "FINISHED"
	BattleCancelled  BattleStatus = "CANCELLED"
)

// BattleFormat distinguishes free-for-all from team battles.
type BattleFormat string

const (
	FormatSolo BattleFormat = "SOLO"
	FormatTeam BattleFormat = "TEAM"
)

// BattleMode selects the win condition.
type BattleMode string

const (
	ModeNormal     BattleMode = "NORMAL"
	ModeUpsideDown BattleMode = "UPSIDE_DOWN"
	ModeJackpot    BattleMode = "JACKPOT"
)

// Battle is a multi-participant, multi-round competitive pack-opening session
// with a pooled prize. MaxParticipants is fixed at creation and never exceeded.
type Battle struct {
	ID              uuid.UUID    `json:"id"`
	Status          BattleStatus `json:"status"`
	Format          BattleFormat `json:"format"`
	Mode            BattleMode   `json:"mode"`
	BoxID           uuid.UUID    `json:"box_id"`
	CreatedBy       uuid.UUID    `json:"created_by"`
	TeamSize        int          `json:"team_size"`
	TeamCount       int          `json:"team_count"`
	MaxParticipants int          `json:"max_participants"`
	Rounds          int          `json:"rounds"`
	EntryFee        int64        `json:"entry_fee"`
	TotalPrize      int64        `json:"total_prize"`
	WinnerID        *uuid.UUID   `json:"winner_id,omitempty"`
	WinningTeam     *int         `json:"winning_team,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	FinishedAt      *time.Time   `json:"finished_at,omitempty"`
}

// TotalCost is what one seat costs: the entry fee plus a pre-paid pack for
// every round. Each participant pays for their own packs, nothing is shared.
func (b *Battle) TotalCost(boxPrice int64) int64 {
	return b.EntryFee + boxPrice*int64(b.Rounds)
}

// EffectiveTeamCount is the divisor used when assigning team numbers. SOLO
// battles are treated as a single team so numbers stay 1-indexed and dense.
func (b *Battle) EffectiveTeamCount() int {
	if b.Format == FormatTeam && b.TeamCount > 0 {
		return b.TeamCount
	}
	return 1
}

// NextTeamNumber assigns seats breadth-first (team 1 slot 1, team 2 slot 1,
// ... before team 1 slot 2) so an early-filled battle stays as balanced as
// possible regardless of join order.
func NextTeamNumber(existingParticipants, teamCount int) int {
	if teamCount < 1 {
		teamCount = 1
	}
	return existingParticipants%teamCount + 1
}

// BattleParticipant is one seat in a battle.
type BattleParticipant struct {
	ID           uuid.UUID `json:"id"`
	BattleID     uuid.UUID `json:"battle_id"`
	AccountID    uuid.UUID `json:"account_id"`
	TeamNumber   int       `json:"team_number"`
	TotalValue   int64     `json:"total_value"`
	RoundsPulled int       `json:"rounds_pulled"`
	JoinedAt     time.Time `json:"joined_at"`
}

// BattlePull is the immutable historical record of one round's draw. The item
// snapshot fields survive the underlying pull being sold later; only PullID is
// nulled in that case, never the row.
type BattlePull struct {
	ID            uuid.UUID  `json:"id"`
	BattleID      uuid.UUID  `json:"battle_id"`
	ParticipantID uuid.UUID  `json:"participant_id"`
	RoundNumber   int        `json:"round_number"`
	PullID        *uuid.UUID `json:"pull_id,omitempty"`
	Name          string     `json:"name"`
	ImageURL      string     `json:"image_url,omitempty"`
	SetName       string     `json:"set_name,omitempty"`
	Rarity        string     `json:"rarity,omitempty"`
	CoinValue     int64      `json:"coin_value"`
	PulledAt      time.Time  `json:"pulled_at"`
}
