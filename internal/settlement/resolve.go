// Package settlement holds the pure battle settlement algorithms: winner
// resolution, prize splitting and pull reassignment. No I/O lives here; the
// battle service feeds it rows read inside the finalize transaction.
package settlement

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/packvault/platform/internal/domain"
)

// Resolution is the outcome of winner resolution: the ordered winner set, the
// winning team for team battles (unset when team aggregates tie), and one
// primary winner used for the battle's winner_id field.
type Resolution struct {
	Winners     []domain.BattleParticipant
	WinningTeam *int
	Primary     domain.BattleParticipant
}

// WinnerAccountIDs returns the winner account ids in resolution order.
func (r *Resolution) WinnerAccountIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Winners))
	for i, w := range r.Winners {
		ids[i] = w.AccountID
	}
	return ids
}

// Resolve computes the winner set for a finished battle. Participants must be
// ordered by join time ascending and pulls by pull time ascending; both
// orderings feed the documented tie-breaks. A battle with no participants, or
// a jackpot battle with no recorded pulls, cannot be resolved and fails loudly
// so finalization never pays out an arbitrary account.
func Resolve(b *domain.Battle, participants []domain.BattleParticipant, pulls []domain.BattlePull) (*Resolution, error) {
	if len(participants) == 0 {
		return nil, domain.ErrUnresolvedWinner(fmt.Sprintf("battle %s has no participants", b.ID))
	}

	if b.Format == domain.FormatTeam {
		return resolveTeam(b, participants)
	}

	switch b.Mode {
	case domain.ModeJackpot:
		return resolveSoloJackpot(b, participants, pulls)
	case domain.ModeUpsideDown:
		return resolveSoloByTotal(participants, false), nil
	default:
		return resolveSoloByTotal(participants, true), nil
	}
}

// resolveSoloByTotal picks the participant(s) with the extreme cumulative
// total. Ties produce multiple winners who split the prize.
func resolveSoloByTotal(participants []domain.BattleParticipant, wantMax bool) *Resolution {
	best := participants[0].TotalValue
	for _, p := range participants[1:] {
		if (wantMax && p.TotalValue > best) || (!wantMax && p.TotalValue < best) {
			best = p.TotalValue
		}
	}

	var winners []domain.BattleParticipant
	for _, p := range participants {
		if p.TotalValue == best {
			winners = append(winners, p)
		}
	}

	return &Resolution{Winners: winners, Primary: winners[0]}
}

// resolveSoloJackpot picks the single participant who recorded the highest
// individual pull. Pulls arrive in chronological order, so keeping the first
// strict maximum implements the earliest-pull tie-break.
func resolveSoloJackpot(b *domain.Battle, participants []domain.BattleParticipant, pulls []domain.BattlePull) (*Resolution, error) {
	if len(pulls) == 0 {
		return nil, domain.ErrUnresolvedWinner(fmt.Sprintf("jackpot battle %s has no recorded pulls", b.ID))
	}

	bestPull := pulls[0]
	for _, p := range pulls[1:] {
		if p.CoinValue > bestPull.CoinValue {
			bestPull = p
		}
	}

	for _, part := range participants {
		if part.ID == bestPull.ParticipantID {
			return &Resolution{Winners: []domain.BattleParticipant{part}, Primary: part}, nil
		}
	}
	return nil, domain.ErrUnresolvedWinner(fmt.Sprintf("jackpot pull %s has no matching participant", bestPull.ID))
}

// resolveTeam aggregates totals per team and picks the team satisfying the
// mode's comparison: minimum for UPSIDE_DOWN, maximum otherwise. All members
// of the winning team win. When team aggregates tie, every tied team's members
// win and no single winning team is reported.
func resolveTeam(b *domain.Battle, participants []domain.BattleParticipant) (*Resolution, error) {
	totals := make(map[int]int64)
	var teamOrder []int
	for _, p := range participants {
		if p.TeamNumber < 1 {
			return nil, domain.ErrUnresolvedWinner(fmt.Sprintf("participant %s has no team in team battle %s", p.ID, b.ID))
		}
		if _, seen := totals[p.TeamNumber]; !seen {
			teamOrder = append(teamOrder, p.TeamNumber)
		}
		totals[p.TeamNumber] += p.TotalValue
	}

	wantMax := b.Mode != domain.ModeUpsideDown
	best := totals[teamOrder[0]]
	for _, team := range teamOrder[1:] {
		if (wantMax && totals[team] > best) || (!wantMax && totals[team] < best) {
			best = totals[team]
		}
	}

	winningTeams := make(map[int]bool)
	for _, team := range teamOrder {
		if totals[team] == best {
			winningTeams[team] = true
		}
	}

	var winners []domain.BattleParticipant
	for _, p := range participants {
		if winningTeams[p.TeamNumber] {
			winners = append(winners, p)
		}
	}

	res := &Resolution{Winners: winners, Primary: pickPrimary(winners)}
	if len(winningTeams) == 1 {
		team := winners[0].TeamNumber
		res.WinningTeam = &team
	}
	return res, nil
}

// pickPrimary selects the headline winner: the member with the highest
// individual total, earliest join breaking ties (winners arrive join-ordered).
func pickPrimary(winners []domain.BattleParticipant) domain.BattleParticipant {
	primary := winners[0]
	for _, w := range winners[1:] {
		if w.TotalValue > primary.TotalValue {
			primary = w
		}
	}
	return primary
}
