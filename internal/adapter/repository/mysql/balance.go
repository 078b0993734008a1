package mysql

import (
	"context"
	"errors"

	"loan-ledger-backend/internal/domain/gateway"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceLedger is the gorm-backed AssetGateway: per-account, per-asset
// integer balances moved inside the caller's transaction, so a lifecycle
// operation and its transfers commit or roll back together.
type BalanceLedger struct{ db *gorm.DB }

func NewBalanceLedger(db *gorm.DB) *BalanceLedger { return &BalanceLedger{db: db} }

func (g *BalanceLedger) Transfer(ctx context.Context, asset gateway.Asset, from, to string, amount uint64) error {
	if asset != gateway.AssetCollateral && asset != gateway.AssetPrincipal {
		return gateway.ErrUnknownAsset
	}
	if amount == 0 {
		return nil
	}

	var src gateway.Balance
	res := g.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ? AND asset = ?", from, asset).
		First(&src)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return gateway.ErrInsufficientFunds
	}
	if res.Error != nil {
		return res.Error
	}
	if src.Amount < amount {
		return gateway.ErrInsufficientFunds
	}

	if err := g.db.WithContext(ctx).
		Model(&gateway.Balance{}).
		Where("account = ? AND asset = ?", from, asset).
		Update("amount", gorm.Expr("amount - ?", amount)).Error; err != nil {
		return err
	}
	return g.credit(ctx, asset, to, amount)
}

// Deposit credits an account from outside the ledger (dev/test seeding and
// on-ramp flows).
func (g *BalanceLedger) Deposit(ctx context.Context, asset gateway.Asset, account string, amount uint64) error {
	if asset != gateway.AssetCollateral && asset != gateway.AssetPrincipal {
		return gateway.ErrUnknownAsset
	}
	return g.credit(ctx, asset, account, amount)
}

func (g *BalanceLedger) BalanceOf(ctx context.Context, asset gateway.Asset, account string) (uint64, error) {
	var b gateway.Balance
	res := g.db.WithContext(ctx).
		Where("account = ? AND asset = ?", account, asset).
		First(&b)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return b.Amount, res.Error
}

func (g *BalanceLedger) credit(ctx context.Context, asset gateway.Asset, account string, amount uint64) error {
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}, {Name: "asset"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"amount": gorm.Expr("amount + ?", amount)}),
		}).
		Create(&gateway.Balance{Account: account, Asset: asset, Amount: amount}).Error
}
