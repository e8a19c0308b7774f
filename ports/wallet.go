package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceReader reads wallet balances from the custodial service
type BalanceReader interface {
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
}
