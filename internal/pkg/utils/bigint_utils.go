package utils

import (
	"math/big"
)

// balanceDisplayPrecision is the number of decimal places shown for native
// balances. The zero value matches the fetcher's fallback entry.
const balanceDisplayPrecision = 4

// ZeroBalance is the sentinel recorded for a network whose query failed.
const ZeroBalance = "0.0000"

// FormatUnits converts a raw integer amount into a human-readable decimal
// string in the network's base unit, considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return ZeroBalance
	}
	if decimals <= 0 {
		return amount.String()
	}

	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value := new(big.Float).Quo(amountFloat, divisor)

	return value.Text('f', balanceDisplayPrecision)
}
