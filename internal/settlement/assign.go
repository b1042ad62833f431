package settlement

import (
	"github.com/google/uuid"

	"github.com/packvault/platform/internal/domain"
)

// AssignPulls plans the ownership transfer of a battle's live pulls to its
// winners. With one winner everything goes to them; with several, pulls are
// assigned round-robin across the winner set in chronological pull order so
// the collection value is distributed evenly in kind as well as in coin.
// Battle pulls whose live pull was already sold (nil reference) are skipped.
// Returns pull id -> new owner account id.
func AssignPulls(winners []domain.BattleParticipant, pulls []domain.BattlePull) map[uuid.UUID]uuid.UUID {
	assignments := make(map[uuid.UUID]uuid.UUID)
	if len(winners) == 0 {
		return assignments
	}

	next := 0
	for _, bp := range pulls {
		if bp.PullID == nil {
			continue
		}
		assignments[*bp.PullID] = winners[next%len(winners)].AccountID
		next++
	}
	return assignments
}
