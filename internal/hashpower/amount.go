package hashpower

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"lukechampine.com/uint128"
)

// BpsDenominator is 100% in basis points.
const BpsDenominator = 10_000

var ErrAmountOverflow = errors.New("amount overflow")

var maxUint64Big = new(big.Int).SetUint64(^uint64(0))

func overflow(what string) error {
	return fmt.Errorf("%w: %s exceeds 18446744073709551615", ErrAmountOverflow, what)
}

// addAmount sums two amounts, failing instead of wrapping.
func addAmount(a, b uint64, what string) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, overflow(what)
	}
	return sum, nil
}

// mulDiv computes a*b/d with a 128-bit intermediate and truncating division.
func mulDiv(a, b, d uint64, what string) (uint64, error) {
	if d == 0 {
		return 0, fmt.Errorf("%s: division by zero", what)
	}
	q := uint128.From64(a).Mul64(b).Div64(d)
	if q.Hi != 0 {
		return 0, overflow(what)
	}
	return q.Lo, nil
}

// applyBps scales amount by (10000+bps)/10000.
func applyBps(amount, bps uint64, what string) (uint64, error) {
	factor, err := addAmount(BpsDenominator, bps, what)
	if err != nil {
		return 0, err
	}
	return mulDiv(amount, factor, BpsDenominator, what)
}

func toUint64(v *big.Int, what string) (uint64, error) {
	if v.Sign() < 0 {
		return 0, fmt.Errorf("%s: negative amount", what)
	}
	if v.Cmp(maxUint64Big) > 0 {
		return 0, overflow(what)
	}
	return v.Uint64(), nil
}
