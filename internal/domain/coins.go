package domain

import (
	"fmt"
	"math"
)

// MaxCoins bounds any single budget or bid so sums stay far from int64
// overflow.
const MaxCoins int64 = 1_000_000_000_000

// CoinsFromFloat converts a JSON number to a whole coin amount. Fractional
// coins are rejected, as are values outside [-MaxCoins, MaxCoins].
func CoinsFromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("coin amounts must be finite")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("coin amounts must be whole numbers")
	}
	if math.Abs(f) > float64(MaxCoins) {
		return 0, fmt.Errorf("coin amounts must be at most %d", MaxCoins)
	}
	return int64(f), nil
}
