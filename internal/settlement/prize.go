package settlement

import "fmt"

// SplitPrize divides an integer prize pool evenly across winners. Every
// winner receives floor(total/n); the first total mod n winners, in resolution
// order, receive one extra coin. The shares always sum to total exactly.
func SplitPrize(total int64, winnerCount int) ([]int64, error) {
	if winnerCount < 1 {
		return nil, fmt.Errorf("prize split needs at least one winner, got %d", winnerCount)
	}
	if total < 0 {
		return nil, fmt.Errorf("prize pool cannot be negative, got %d", total)
	}

	base := total / int64(winnerCount)
	remainder := total - base*int64(winnerCount)

	shares := make([]int64, winnerCount)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares, nil
}
