package oracle

import (
	"context"
	"math/big"
)

// PriceOracle reports the latest quote for the collateral asset in the
// principal asset's pricing unit, as an integer at a fixed decimal scale
// (see valuation.Config.QuoteDecimals). A missing or unpublished feed is
// reported as a zero quote; callers treat any non-positive quote as the
// rejection signal. Quote age is not bounded here.
type PriceOracle interface {
	LatestPrice(ctx context.Context) (*big.Int, error)
}
