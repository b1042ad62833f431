// Package gacha implements the weighted random draw primitive. It is pure:
// no state, no side effects, one item per call.
package gacha

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrEmptyPool rejects a draw over a pool with no entries.
	ErrEmptyPool = errors.New("draw pool is empty")
	// ErrZeroTotalWeight rejects a pool whose weights sum to zero or less.
	ErrZeroTotalWeight = errors.New("draw pool has no positive total weight")
)

// Entry is the uniform projection of a pool item the engine draws over.
// Weights do not need to sum to any particular total; they are normalized
// against the pool sum at draw time.
type Entry struct {
	ID     uuid.UUID
	Weight float64
	Value  int64
}

// Draw samples one entry from the pool. It samples r uniformly from
// [0, totalWeight), scans entries in slice order and returns the first whose
// cumulative weight reaches r, falling back to the last entry if rounding
// makes the scan fall through. The scan order tie-break keeps boundary
// sampling deterministic for a fixed pool order and a fixed variate.
func Draw(entries []Entry, rng RandomSource) (Entry, error) {
	if len(entries) == 0 {
		return Entry{}, ErrEmptyPool
	}

	var total float64
	for _, e := range entries {
		total += e.Weight
	}
	if total <= 0 {
		return Entry{}, ErrZeroTotalWeight
	}

	if rng == nil {
		rng = DefaultSource()
	}
	r := rng.Float64() * total

	var cumulative float64
	for _, e := range entries {
		cumulative += e.Weight
		if cumulative >= r {
			return e, nil
		}
	}
	return entries[len(entries)-1], nil
}

// DrawN performs n independent draws over the same pool. A pack opening of
// N items issues N calls; there is no without-replacement variant.
func DrawN(entries []Entry, n int, rng RandomSource) ([]Entry, error) {
	if n < 0 {
		n = 0
	}
	results := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := Draw(entries, rng)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, nil
}
