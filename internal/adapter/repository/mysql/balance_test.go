package mysql

import (
	"context"
	"errors"
	"testing"

	"loan-ledger-backend/internal/domain/gateway"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&gateway.Balance{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestTransfer_MovesFunds(t *testing.T) {
	db := openLedgerDB(t)
	g := NewBalanceLedger(db)
	ctx := context.Background()

	if err := g.Deposit(ctx, gateway.AssetPrincipal, "alice", 1000); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if err := g.Transfer(ctx, gateway.AssetPrincipal, "alice", "bob", 400); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	got, err := g.BalanceOf(ctx, gateway.AssetPrincipal, "alice")
	if err != nil || got != 600 {
		t.Fatalf("alice = %d (err %v), want 600", got, err)
	}
	got, err = g.BalanceOf(ctx, gateway.AssetPrincipal, "bob")
	if err != nil || got != 400 {
		t.Fatalf("bob = %d (err %v), want 400", got, err)
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	db := openLedgerDB(t)
	g := NewBalanceLedger(db)
	ctx := context.Background()

	if err := g.Deposit(ctx, gateway.AssetCollateral, "alice", 10); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	err := g.Transfer(ctx, gateway.AssetCollateral, "alice", "bob", 11)
	if !errors.Is(err, gateway.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	// unknown debtor account is the same failure
	err = g.Transfer(ctx, gateway.AssetCollateral, "nobody", "bob", 1)
	if !errors.Is(err, gateway.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestTransfer_AssetsAreNotConflated(t *testing.T) {
	db := openLedgerDB(t)
	g := NewBalanceLedger(db)
	ctx := context.Background()

	if err := g.Deposit(ctx, gateway.AssetCollateral, "alice", 500); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	// alice holds collateral, not principal
	err := g.Transfer(ctx, gateway.AssetPrincipal, "alice", "bob", 100)
	if !errors.Is(err, gateway.ErrInsufficientFunds) {
		t.Fatalf("principal transfer drew on collateral: err = %v", err)
	}
	if err := g.Transfer(ctx, "gold", "alice", "bob", 1); !errors.Is(err, gateway.ErrUnknownAsset) {
		t.Fatalf("err = %v, want ErrUnknownAsset", err)
	}
}

func TestTransfer_ZeroAmountIsNoOp(t *testing.T) {
	db := openLedgerDB(t)
	g := NewBalanceLedger(db)
	if err := g.Transfer(context.Background(), gateway.AssetPrincipal, "alice", "bob", 0); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
}
