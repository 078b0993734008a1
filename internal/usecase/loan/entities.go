package loan

import "time"

type RequestLoanInput struct {
	BorrowerID       string `json:"borrower_id"`
	PrincipalAmount  uint64 `json:"principal_amount"`
	CollateralAmount uint64 `json:"collateral_amount"`
	InterestRateBps  uint32 `json:"interest_rate_bps"`
	DurationSeconds  int64  `json:"duration_seconds"`
}

type LoanDTO struct {
	LoanID           uint64     `json:"loan_id"`
	BorrowerID       string     `json:"borrower_id"`
	LenderID         string     `json:"lender_id,omitempty"`
	PrincipalAmount  uint64     `json:"principal_amount"`
	CollateralAmount uint64     `json:"collateral_amount"`
	InterestRateBps  uint32     `json:"interest_rate_bps"`
	DurationSeconds  int64      `json:"duration_seconds"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
}

type RepayableDTO struct {
	LoanID   uint64 `json:"loan_id"`
	Total    uint64 `json:"total_owed"`
	Interest uint64 `json:"interest"`
}
