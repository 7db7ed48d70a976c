package hashpower

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatTokenAmount renders a base-unit amount in whole tokens, truncated to
// maxFraction decimal places with trailing zeros dropped.
func FormatTokenAmount(amount uint64, decimals uint8, maxFraction int32) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.Truncate(maxFraction).String()
}
