package interest

import "math/big"

const (
	// SecondsPerYear is the accrual year used for annualized rates.
	SecondsPerYear = 365 * 86400
	// BpsDenominator converts basis points to a plain ratio.
	BpsDenominator = 10_000
)

var denominator = big.NewInt(int64(SecondsPerYear) * BpsDenominator)

// Accrued computes simple (non-compounding) interest owed on a principal
// after elapsedSeconds at an annualized rate in basis points:
//
//	floor(principal * rateBps * elapsedSeconds / (SecondsPerYear * 10000))
//
// The division truncates; repayment amounts must be reproducible from the
// on-record integers alone, so no rounding up is ever applied. A negative
// elapsed time accrues nothing.
func Accrued(principal uint64, rateBps uint32, elapsedSeconds int64) uint64 {
	if principal == 0 || rateBps == 0 || elapsedSeconds <= 0 {
		return 0
	}
	n := new(big.Int).SetUint64(principal)
	n.Mul(n, new(big.Int).SetUint64(uint64(rateBps)))
	n.Mul(n, big.NewInt(elapsedSeconds))
	n.Quo(n, denominator)
	return n.Uint64()
}
