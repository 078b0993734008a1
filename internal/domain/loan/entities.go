package loan

import (
	"errors"
	"time"
)

type Status string

const (
	StatusRequested  Status = "requested"
	StatusFunded     Status = "funded"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
)

// Closed reports whether the status is terminal. Terminal states are
// mutually exclusive and never left.
func (s Status) Closed() bool {
	return s == StatusRepaid || s == StatusLiquidated
}

var (
	ErrNotFound       = errors.New("loan not found")
	ErrInvalidInput   = errors.New("collateral and principal must be positive")
	ErrUnauthorized   = errors.New("caller is not the loan borrower")
	ErrAlreadyFunded  = errors.New("loan already funded")
	ErrNotFunded      = errors.New("loan not yet funded")
	ErrLoanClosed     = errors.New("loan already repaid or liquidated")
	ErrTransferFailed = errors.New("asset transfer failed")
	ErrInvalidPrice   = errors.New("oracle reported a non-positive price")
	ErrNotEligible    = errors.New("loan not eligible for liquidation")
)

// Loan is the ledger record for one collateralized loan. The numeric ID is
// the registry-owned sequence: auto-incremented, never reused (loans are
// never deleted; closed loans stay as history).
type Loan struct {
	ID               uint64     `gorm:"primaryKey;column:id" json:"loan_id"`
	BorrowerID       string     `gorm:"size:32;index:idx_loans_borrower;column:borrower_id" json:"borrower_id"`
	LenderID         string     `gorm:"size:32;column:lender_id" json:"lender_id,omitempty"`
	CollateralAmount uint64     `gorm:"column:collateral_amount" json:"collateral_amount"`
	PrincipalAmount  uint64     `gorm:"column:principal_amount" json:"principal_amount"`
	InterestRateBps  uint32     `gorm:"column:interest_rate_bps" json:"interest_rate_bps"`
	DurationSeconds  int64      `gorm:"column:duration_seconds" json:"duration_seconds"`
	StartedAt        *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	Status           Status     `gorm:"type:enum('requested','funded','repaid','liquidated');default:'requested';column:status" json:"status"`
	StateUpdatedAt   time.Time  `gorm:"autoCreateTime;column:state_updated_at" json:"state_updated_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime;column:updated_at" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Funded reports whether accrual has started. StartedAt is nil until the
// funding transaction commits and is set exactly once.
func (l *Loan) Funded() bool { return l.StartedAt != nil }

// Expired reports whether the loan term has elapsed, which permits
// liquidation regardless of collateral value. Strictly after the deadline.
func (l *Loan) Expired(now time.Time) bool {
	if l.StartedAt == nil {
		return false
	}
	return now.After(l.StartedAt.Add(time.Duration(l.DurationSeconds) * time.Second))
}

// ElapsedSeconds is the accrual time used for interest, zero before funding.
func (l *Loan) ElapsedSeconds(now time.Time) int64 {
	if l.StartedAt == nil {
		return 0
	}
	return int64(now.Sub(*l.StartedAt) / time.Second)
}

// ActiveLoan is the active-loan index: one row per loan not yet in a
// terminal state. Scans read it in loan_id order; terminal transitions
// delete the row by primary key inside the same transaction that flips
// the status, so a closed loan is never visible to a later sweep.
type ActiveLoan struct {
	LoanID uint64 `gorm:"primaryKey;column:loan_id"`
}

func (ActiveLoan) TableName() string { return "active_loans" }
