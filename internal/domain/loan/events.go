package loan

import "context"

// Domain events emitted after a lifecycle transition commits. Each carries
// the fields an external indexer needs; ledger rows remain the source of
// truth, so publishing is best-effort.
type Event interface {
	Name() string
}

type LoanRequested struct {
	LoanID           uint64 `json:"loan_id"`
	BorrowerID       string `json:"borrower_id"`
	CollateralAmount uint64 `json:"collateral_amount"`
	PrincipalAmount  uint64 `json:"principal_amount"`
}

func (LoanRequested) Name() string { return "loan.requested" }

type LoanFunded struct {
	LoanID   uint64 `json:"loan_id"`
	LenderID string `json:"lender_id"`
}

func (LoanFunded) Name() string { return "loan.funded" }

type LoanRepaid struct {
	LoanID uint64 `json:"loan_id"`
}

func (LoanRepaid) Name() string { return "loan.repaid" }

type LoanLiquidated struct {
	LoanID uint64 `json:"loan_id"`
}

func (LoanLiquidated) Name() string { return "loan.liquidated" }

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
