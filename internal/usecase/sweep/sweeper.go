// Package sweep finds liquidation-eligible loans and triggers their
// liquidation. Scan and Perform are split so the caller owns the cadence:
// no lock is held between finding an id and acting on it, and the registry
// re-validates eligibility under its own row lock before mutating state.
package sweep

import (
	"context"
	"errors"
	"log"
	"time"

	domain "loan-ledger-backend/internal/domain/loan"

	"loan-ledger-backend/internal/domain/oracle"
	loanuc "loan-ledger-backend/internal/usecase/loan"
	"loan-ledger-backend/internal/usecase/valuation"
)

type Scanner struct {
	repo    domain.Repository
	oracle  oracle.PriceOracle
	val     *valuation.Valuator
	nowFunc func() time.Time
}

func NewScanner(repo domain.Repository, po oracle.PriceOracle, val *valuation.Valuator) *Scanner {
	return &Scanner{
		repo:    repo,
		oracle:  po,
		val:     val,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.nowFunc = now
	return s
}

// Scan walks the active-loan index in id order and returns the first loan
// whose term has expired or whose collateral value is under the threshold.
// First found wins; there is no attempt to pick the worst-off loan. Loans
// that are unfunded or already closed are skipped — the index row may be
// stale relative to the loan row.
func (s *Scanner) Scan(ctx context.Context) (uint64, bool, error) {
	quote, err := s.oracle.LatestPrice(ctx)
	if err != nil {
		return 0, false, err
	}
	if quote == nil || quote.Sign() <= 0 {
		return 0, false, domain.ErrInvalidPrice
	}

	ids, err := s.repo.ListActiveIDs(ctx)
	if err != nil {
		return 0, false, err
	}
	now := s.nowFunc()
	for _, id := range ids {
		l, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return 0, false, err
		}
		if l.Status != domain.StatusFunded {
			continue
		}
		eligible, err := s.val.Eligible(l, quote, now)
		if err != nil {
			return 0, false, err
		}
		if eligible {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// Runner owns the poll cadence for the scan-then-act pair and liquidates
// as a fixed system actor.
type Runner struct {
	scanner  *Scanner
	registry *loanuc.Usecase
	actorID  string
	interval time.Duration
}

func NewRunner(s *Scanner, registry *loanuc.Usecase, actorID string, interval time.Duration) *Runner {
	return &Runner{scanner: s, registry: registry, actorID: actorID, interval: interval}
}

// Perform hands a found id to the registry's liquidation operation.
func (r *Runner) Perform(ctx context.Context, loanID uint64) error {
	_, err := r.registry.Liquidate(ctx, loanID, r.actorID)
	return err
}

// Run polls until the context is cancelled. A loan closed between Scan and
// Perform surfaces as ErrLoanClosed/ErrNotEligible and is simply skipped.
func (r *Runner) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			id, found, err := r.scanner.Scan(ctx)
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidPrice) {
					log.Printf("sweep: scan: %v", err)
				}
				continue
			}
			if !found {
				continue
			}
			if err := r.Perform(ctx, id); err != nil {
				if errors.Is(err, domain.ErrLoanClosed) || errors.Is(err, domain.ErrNotEligible) {
					continue
				}
				log.Printf("sweep: liquidate loan %d: %v", id, err)
			}
		}
	}
}
