package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPrize_SingleWinnerTakesAll(t *testing.T) {
	shares, err := SplitPrize(30, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{30}, shares)
}

func TestSplitPrize_EvenSplit(t *testing.T) {
	shares, err := SplitPrize(30, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{15, 15}, shares)
}

func TestSplitPrize_RemainderGoesToFirstWinners(t *testing.T) {
	shares, err := SplitPrize(31, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{16, 15}, shares)

	shares, err = SplitPrize(100, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{34, 33, 33}, shares)
}

func TestSplitPrize_ZeroPot(t *testing.T) {
	shares, err := SplitPrize(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0}, shares)
}

func TestSplitPrize_RejectsBadInputs(t *testing.T) {
	_, err := SplitPrize(10, 0)
	assert.Error(t, err)

	_, err = SplitPrize(10, -1)
	assert.Error(t, err)

	_, err = SplitPrize(-10, 2)
	assert.Error(t, err)
}

func TestSplitPrize_SumAlwaysEqualsTotal(t *testing.T) {
	// no coin is ever lost or created, for any winner count
	totals := []int64{0, 1, 7, 30, 99, 1000, 12345}
	for _, total := range totals {
		for n := 1; n <= 16; n++ {
			shares, err := SplitPrize(total, n)
			require.NoError(t, err)
			require.Len(t, shares, n)

			var sum int64
			for i, s := range shares {
				sum += s
				if i > 0 {
					assert.GreaterOrEqual(t, shares[i-1], s)
				}
			}
			assert.Equal(t, total, sum, "total=%d winners=%d", total, n)
		}
	}
}
