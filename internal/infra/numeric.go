package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToCoins converts a pgtype.Numeric read from a numeric(15,0) coin
// column to int64. Errors on NULL, fractional digits cannot occur on these
// columns but a negative exponent still truncates, and overflow is rejected.
func NumericToCoins(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("coin value is NULL")
	}

	// pgtype.Numeric stores value as Int * 10^Exp
	v := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		v.Mul(v, scale)
	} else if n.Exp < 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		v.Div(v, scale)
	}

	if !v.IsInt64() {
		return 0, fmt.Errorf("coin value %s overflows int64", v.String())
	}
	return v.Int64(), nil
}

// CoinsToNumeric converts an int64 coin amount for writing to a
// numeric(15,0) column.
func CoinsToNumeric(coins int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(coins),
		Exp:              0,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
