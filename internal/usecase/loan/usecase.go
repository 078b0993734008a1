package loan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	domain "loan-ledger-backend/internal/domain/loan"

	"loan-ledger-backend/internal/domain/gateway"
	"loan-ledger-backend/internal/domain/oracle"
	"loan-ledger-backend/internal/domain/uow"
	"loan-ledger-backend/internal/usecase/valuation"
	"loan-ledger-backend/pkg/interest"
)

// Usecase is the loan registry: it owns every lifecycle transition and the
// active-loan index. All state-changing operations run inside a single
// transaction with the loan row locked, so competing calls serialize and
// the first committed mutation wins; a gateway failure inside the
// transaction rolls every provisional change back.
type Usecase struct {
	repo    domain.Repository
	uow     uow.UnitOfWork
	oracle  oracle.PriceOracle
	val     *valuation.Valuator
	events  domain.Publisher
	escrow  string
	nowFunc func() time.Time
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, po oracle.PriceOracle, val *valuation.Valuator, pub domain.Publisher, escrowAccount string) *Usecase {
	return &Usecase{
		repo:    repo,
		uow:     tx,
		oracle:  po,
		val:     val,
		events:  pub,
		escrow:  escrowAccount,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the registry clock; tests use it to advance accrual.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.nowFunc = now
	return u
}

// Request opens a loan: allocates a requested record, appends it to the
// active index and escrows the borrower's collateral, all in one
// transaction — no loan record exists without its collateral committed.
func (u *Usecase) Request(ctx context.Context, in RequestLoanInput) (*LoanDTO, error) {
	if in.BorrowerID == "" || in.CollateralAmount == 0 || in.PrincipalAmount == 0 {
		return nil, domain.ErrInvalidInput
	}

	l := &domain.Loan{
		BorrowerID:       in.BorrowerID,
		CollateralAmount: in.CollateralAmount,
		PrincipalAmount:  in.PrincipalAmount,
		InterestRateBps:  in.InterestRateBps,
		DurationSeconds:  in.DurationSeconds,
		Status:           domain.StatusRequested,
		StateUpdatedAt:   u.nowFunc(),
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.AppendActive(ctx, l.ID); err != nil {
			return err
		}
		if err := r.Gateway.Transfer(ctx, gateway.AssetCollateral, l.BorrowerID, u.escrow, l.CollateralAmount); err != nil {
			return fmt.Errorf("%w: escrow collateral: %v", domain.ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, domain.LoanRequested{
		LoanID:           l.ID,
		BorrowerID:       l.BorrowerID,
		CollateralAmount: l.CollateralAmount,
		PrincipalAmount:  l.PrincipalAmount,
	})
	return toDTO(l), nil
}

// Fund activates a requested loan: sets the lender and the accrual start
// exactly once, then moves the principal from funder to borrower. The row
// lock makes funding single-writer; a losing racer observes the committed
// lender and fails with ErrAlreadyFunded.
func (u *Usecase) Fund(ctx context.Context, loanID uint64, funderID string) (*LoanDTO, error) {
	if funderID == "" {
		return nil, domain.ErrInvalidInput
	}
	var funded *domain.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.LenderID != "" {
			return domain.ErrAlreadyFunded
		}
		now := u.nowFunc()
		l.LenderID = funderID
		l.StartedAt = &now
		l.Status = domain.StatusFunded
		l.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Gateway.Transfer(ctx, gateway.AssetPrincipal, funderID, l.BorrowerID, l.PrincipalAmount); err != nil {
			return fmt.Errorf("%w: disburse principal: %v", domain.ErrTransferFailed, err)
		}
		funded = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, domain.LoanFunded{LoanID: funded.ID, LenderID: funded.LenderID})
	return toDTO(funded), nil
}

// Repay settles a funded loan: the borrower pays principal plus live
// accrued interest to the lender, the loan flips to repaid, and only then
// is the escrowed collateral released back to the borrower.
func (u *Usecase) Repay(ctx context.Context, loanID uint64, callerID string) (*LoanDTO, error) {
	var repaid *domain.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if callerID != l.BorrowerID {
			return domain.ErrUnauthorized
		}
		if l.Status.Closed() {
			return domain.ErrLoanClosed
		}
		if !l.Funded() {
			return domain.ErrNotFunded
		}
		now := u.nowFunc()
		owed := interest.Accrued(l.PrincipalAmount, l.InterestRateBps, l.ElapsedSeconds(now))
		total := l.PrincipalAmount + owed
		if err := r.Gateway.Transfer(ctx, gateway.AssetPrincipal, l.BorrowerID, l.LenderID, total); err != nil {
			return fmt.Errorf("%w: repay principal: %v", domain.ErrTransferFailed, err)
		}
		l.Status = domain.StatusRepaid
		l.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.RemoveActive(ctx, l.ID); err != nil {
			return err
		}
		// Collateral leaves escrow only after the terminal status is on
		// the record.
		if err := r.Gateway.Transfer(ctx, gateway.AssetCollateral, u.escrow, l.BorrowerID, l.CollateralAmount); err != nil {
			return fmt.Errorf("%w: release collateral: %v", domain.ErrTransferFailed, err)
		}
		repaid = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, domain.LoanRepaid{LoanID: repaid.ID})
	return toDTO(repaid), nil
}

// Liquidate closes a funded loan whose term expired or whose collateral
// value fell under the threshold, awarding the escrowed collateral to the
// lender. Any caller may trigger it; eligibility is re-validated under the
// row lock, so a stale scan result degrades to ErrLoanClosed or
// ErrNotEligible instead of a double close.
func (u *Usecase) Liquidate(ctx context.Context, loanID uint64, callerID string) (*LoanDTO, error) {
	var closed *domain.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status.Closed() {
			return domain.ErrLoanClosed
		}
		if !l.Funded() {
			return domain.ErrNotEligible
		}
		quote, err := u.oracle.LatestPrice(ctx)
		if err != nil {
			return err
		}
		if quote == nil || quote.Sign() <= 0 {
			return domain.ErrInvalidPrice
		}
		now := u.nowFunc()
		eligible, err := u.val.Eligible(l, quote, now)
		if err != nil {
			return err
		}
		if !eligible {
			return domain.ErrNotEligible
		}
		l.Status = domain.StatusLiquidated
		l.StateUpdatedAt = now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.RemoveActive(ctx, l.ID); err != nil {
			return err
		}
		if err := r.Gateway.Transfer(ctx, gateway.AssetCollateral, u.escrow, l.LenderID, l.CollateralAmount); err != nil {
			return fmt.Errorf("%w: seize collateral: %v", domain.ErrTransferFailed, err)
		}
		closed = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, domain.LoanLiquidated{LoanID: closed.ID})
	return toDTO(closed), nil
}

// TotalRepayable returns the live amount owed and its interest component.
// Closed or never-funded loans owe nothing through this call. Read-only.
func (u *Usecase) TotalRepayable(ctx context.Context, loanID uint64) (*RepayableDTO, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	dto := &RepayableDTO{LoanID: l.ID}
	if l.Status.Closed() || !l.Funded() {
		return dto, nil
	}
	dto.Interest = interest.Accrued(l.PrincipalAmount, l.InterestRateBps, l.ElapsedSeconds(u.nowFunc()))
	dto.Total = l.PrincipalAmount + dto.Interest
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// ActiveLoans returns the active-loan index in id order.
func (u *Usecase) ActiveLoans(ctx context.Context) ([]uint64, error) {
	return u.repo.ListActiveIDs(ctx)
}

// LatestPrice exposes the oracle quote as-is; sign validation belongs to
// the operations that act on it.
func (u *Usecase) LatestPrice(ctx context.Context) (*big.Int, error) {
	return u.oracle.LatestPrice(ctx)
}

// publish is post-commit and best-effort: the ledger row is the source of
// truth, indexers catch up from it if the stream write fails.
func (u *Usecase) publish(ctx context.Context, ev domain.Event) {
	if u.events == nil {
		return
	}
	if err := u.events.Publish(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("events: publish %s: %v", ev.Name(), err)
	}
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:           l.ID,
		BorrowerID:       l.BorrowerID,
		LenderID:         l.LenderID,
		PrincipalAmount:  l.PrincipalAmount,
		CollateralAmount: l.CollateralAmount,
		InterestRateBps:  l.InterestRateBps,
		DurationSeconds:  l.DurationSeconds,
		StartedAt:        l.StartedAt,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
	}
}
