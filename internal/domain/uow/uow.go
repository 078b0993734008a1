package uow

import (
	"context"

	"loan-ledger-backend/internal/domain/gateway"
	"loan-ledger-backend/internal/domain/loan"
)

// Repos bundles the collaborators bound to one transaction. The gateway
// rides in the same transaction so a failed transfer rolls back any loan
// mutation made before it.
type Repos struct {
	Loans   loan.Repository
	Gateway gateway.AssetGateway
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in. Serializes
	// competing lifecycle calls on one loan; the first committed wins.
	WithinLoanTx(ctx context.Context, id uint64, fn func(r Repos, l *loan.Loan) error) error
}
