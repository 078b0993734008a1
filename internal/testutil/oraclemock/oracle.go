package oraclemock

import (
	"context"
	"math/big"
	"sync"
)

// Oracle is a function-backed mock that satisfies oracle.PriceOracle.
// Without a LatestPriceFn it serves the settable fixed quote.
type Oracle struct {
	LatestPriceFn func(ctx context.Context) (*big.Int, error)

	mu    sync.Mutex
	quote *big.Int
}

// Fixed returns an oracle serving the given quote until SetQuote changes it.
func Fixed(quote *big.Int) *Oracle {
	o := &Oracle{}
	o.SetQuote(quote)
	return o
}

func (o *Oracle) SetQuote(quote *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if quote == nil {
		o.quote = nil
		return
	}
	o.quote = new(big.Int).Set(quote)
}

func (o *Oracle) LatestPrice(ctx context.Context) (*big.Int, error) {
	if o.LatestPriceFn != nil {
		return o.LatestPriceFn(ctx)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.quote == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(o.quote), nil
}
