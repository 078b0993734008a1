package valuation

import (
	"errors"
	"math/big"
	"testing"
	"time"

	domain "loan-ledger-backend/internal/domain/loan"
)

// Raw base units for the default scales (collateral 18, principal 6, quote 8).
func unitCollateral() uint64 { return 1_000_000_000_000_000_000 }
func usd(d int64) *big.Int   { return new(big.Int).Mul(big.NewInt(d), big.NewInt(100_000_000)) }

func TestIsUnderCollateralized_HealthyAt200Pct(t *testing.T) {
	v := New(DefaultConfig())
	// 1 collateral unit at $2000 against 1000 principal units → 200%.
	under, err := v.IsUnderCollateralized(unitCollateral(), usd(2000), 1_000_000_000)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if under {
		t.Fatalf("200%% collateralized loan flagged as under-collateralized")
	}
}

func TestIsUnderCollateralized_UnderAt60Pct(t *testing.T) {
	v := New(DefaultConfig())
	under, err := v.IsUnderCollateralized(unitCollateral(), usd(600), 1_000_000_000)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !under {
		t.Fatalf("60%% collateralized loan not flagged")
	}
}

func TestIsUnderCollateralized_ThresholdIsStrict(t *testing.T) {
	v := New(DefaultConfig())
	// Exactly 120%: $1200 of collateral against 1000 principal units.
	under, err := v.IsUnderCollateralized(unitCollateral(), usd(1200), 1_000_000_000)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if under {
		t.Fatalf("ratio exactly at 120%% must not be eligible")
	}
	// One quote tick below the threshold flips it.
	justBelow := new(big.Int).Sub(usd(1200), big.NewInt(100))
	under, err = v.IsUnderCollateralized(unitCollateral(), justBelow, 1_000_000_000)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !under {
		t.Fatalf("ratio strictly below 120%% must be eligible")
	}
}

func TestIsUnderCollateralized_RejectsNonPositiveQuote(t *testing.T) {
	v := New(DefaultConfig())
	for _, quote := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		_, err := v.IsUnderCollateralized(unitCollateral(), quote, 1_000_000_000)
		if !errors.Is(err, domain.ErrInvalidPrice) {
			t.Fatalf("quote %v: err = %v, want ErrInvalidPrice", quote, err)
		}
	}
}

func TestCollateralValue_NormalizesScales(t *testing.T) {
	v := New(DefaultConfig())
	got := v.CollateralValue(unitCollateral()/2, usd(2000)).BigInt()
	if want := usd(1000); got.Cmp(want) != 0 {
		t.Fatalf("0.5 units at $2000 = %s, want %s", got, want)
	}
}

func TestEligible_ExpiryOverridesHealthyCollateral(t *testing.T) {
	v := New(DefaultConfig())
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &domain.Loan{
		CollateralAmount: unitCollateral(),
		PrincipalAmount:  1_000_000_000,
		DurationSeconds:  7 * 86400,
		StartedAt:        &start,
		Status:           domain.StatusFunded,
	}

	atDeadline := start.Add(7 * 86400 * time.Second)
	ok, err := v.Eligible(l, usd(2000), atDeadline)
	if err != nil || ok {
		t.Fatalf("healthy loan at exact deadline: eligible=%v err=%v", ok, err)
	}

	ok, err = v.Eligible(l, usd(2000), atDeadline.Add(time.Second))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !ok {
		t.Fatalf("expired loan must be eligible even while healthy")
	}
}

func TestEligible_UnfundedNeverEligible(t *testing.T) {
	v := New(DefaultConfig())
	l := &domain.Loan{
		CollateralAmount: unitCollateral(),
		PrincipalAmount:  1_000_000_000,
		DurationSeconds:  60,
		Status:           domain.StatusRequested,
	}
	ok, err := v.Eligible(l, usd(1), time.Now().UTC())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok {
		t.Fatalf("loan with no accrual start must not be eligible")
	}
}
