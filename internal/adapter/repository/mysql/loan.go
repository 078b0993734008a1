package mysql

import (
	"context"
	"errors"

	domain "loan-ledger-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	var out domain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &out, res.Error
}

// GetByIDForUpdate locks the loan row for the duration of the enclosing
// transaction; competing lifecycle calls on the same loan queue here.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	var out domain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LoanRepository) AppendActive(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Create(&domain.ActiveLoan{LoanID: id}).Error
}

func (r *LoanRepository) RemoveActive(ctx context.Context, id uint64) error {
	// delete by primary key; removing an absent row is not an error
	return r.db.WithContext(ctx).Delete(&domain.ActiveLoan{LoanID: id}).Error
}

func (r *LoanRepository) ListActiveIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&domain.ActiveLoan{}).
		Order("loan_id ASC").
		Pluck("loan_id", &ids).Error
	return ids, err
}
