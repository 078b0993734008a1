package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error

	// Active-loan index. ListActiveIDs returns ids in ascending order;
	// RemoveActive is a no-op when the id is already gone.
	AppendActive(ctx context.Context, id uint64) error
	RemoveActive(ctx context.Context, id uint64) error
	ListActiveIDs(ctx context.Context) ([]uint64, error)
}
