package gateway

import (
	"context"
	"errors"
)

// Asset identifies which of the two asset kinds a transfer moves. The
// native collateral asset and the stable principal asset have different
// decimal precision and must never be conflated; amounts are always in the
// asset's own base units.
type Asset string

const (
	AssetCollateral Asset = "collateral"
	AssetPrincipal  Asset = "principal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance for transfer")
	ErrUnknownAsset      = errors.New("unknown asset kind")
)

// AssetGateway moves asset base units between accounts and reports the
// outcome synchronously. Implementations invoked inside a registry
// transaction must be atomic with it: a returned error rolls the whole
// operation back.
type AssetGateway interface {
	Transfer(ctx context.Context, asset Asset, from, to string, amount uint64) error
}

// Balance is one account's holding of one asset, kept by the gorm-backed
// ledger gateway.
type Balance struct {
	Account string `gorm:"size:32;primaryKey;column:account"`
	Asset   Asset  `gorm:"size:16;primaryKey;column:asset"`
	Amount  uint64 `gorm:"column:amount"`
}

func (Balance) TableName() string { return "balances" }
