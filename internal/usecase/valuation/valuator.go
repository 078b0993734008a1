package valuation

import (
	"math/big"
	"time"

	"loan-ledger-backend/internal/domain/loan"
	"loan-ledger-backend/pkg/fixedpoint"
)

const (
	ratioBase = 100
	// Collateral value must stay at or above 120% of the principal value;
	// strictly below triggers liquidation eligibility.
	minCollateralRatioPct = 120
)

// Config fixes the decimal scales of the three integer domains the
// valuator mixes: the collateral asset's base units, the principal
// asset's base units, and the oracle quote.
type Config struct {
	CollateralDecimals uint8
	PrincipalDecimals  uint8
	QuoteDecimals      uint8
}

// DefaultConfig matches an 18-decimal native collateral asset, a
// 6-decimal stable principal asset and an 8-decimal price feed.
func DefaultConfig() Config {
	return Config{CollateralDecimals: 18, PrincipalDecimals: 6, QuoteDecimals: 8}
}

type Valuator struct{ cfg Config }

func New(cfg Config) *Valuator { return &Valuator{cfg: cfg} }

// CollateralValue converts a collateral quantity and an oracle quote into
// a value at the quote scale. collateral(@Sc) * quote(@Sq) carries scale
// Sc+Sq; rescaling back to Sq divides out the collateral unit exactly.
func (v *Valuator) CollateralValue(collateralAmount uint64, quote *big.Int) fixedpoint.Amount {
	c := fixedpoint.FromUint64(collateralAmount, v.cfg.CollateralDecimals)
	q := fixedpoint.New(quote, v.cfg.QuoteDecimals)
	return c.Mul(q).Rescale(v.cfg.QuoteDecimals)
}

// IsUnderCollateralized evaluates the collateralization ratio against the
// 120% threshold, with both sides normalized to the quote scale. Fails
// with loan.ErrInvalidPrice when the quote is non-positive.
func (v *Valuator) IsUnderCollateralized(collateralAmount uint64, quote *big.Int, principalAmount uint64) (bool, error) {
	if quote == nil || quote.Sign() <= 0 {
		return false, loan.ErrInvalidPrice
	}
	collateralValue := v.CollateralValue(collateralAmount, quote).BigInt()
	principalValue := fixedpoint.FromUint64(principalAmount, v.cfg.PrincipalDecimals).
		Rescale(v.cfg.QuoteDecimals).BigInt()

	lhs := collateralValue.Mul(collateralValue, big.NewInt(ratioBase))
	rhs := principalValue.Mul(principalValue, big.NewInt(minCollateralRatioPct))
	return lhs.Cmp(rhs) < 0, nil
}

// Eligible reports whether a funded loan may be liquidated: its term has
// expired, or its collateral value has fallen under the threshold.
func (v *Valuator) Eligible(l *loan.Loan, quote *big.Int, now time.Time) (bool, error) {
	if !l.Funded() {
		return false, nil
	}
	if l.Expired(now) {
		return true, nil
	}
	return v.IsUnderCollateralized(l.CollateralAmount, quote, l.PrincipalAmount)
}
