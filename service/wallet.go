package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// Balance is a wallet balance. Available is false when the custodial service could not be
// reached and Amount is then zero.
type Balance struct {
	Address   string
	Amount    decimal.Decimal
	Available bool
}

// TransactionPage is one page of audit entries
type TransactionPage struct {
	Items []core.Transaction
	Total int
	Page  core.Page
}

// WalletService exposes read-only wallet data of the calling principal
type WalletService struct {
	balances ports.BalanceReader
	txLog    ports.TransactionLog
	log      zerolog.Logger
}

// NewWalletService creates a wallet service. A nil balance reader reports every balance as
// unavailable.
func NewWalletService(balances ports.BalanceReader, txLog ports.TransactionLog, log zerolog.Logger) *WalletService {
	return &WalletService{
		balances: balances,
		txLog:    txLog,
		log:      log.With().Str("component", "wallet").Logger(),
	}
}

// Balance reads the principal's balance, degrading instead of failing when upstream is down
func (s *WalletService) Balance(ctx context.Context, principal core.Principal) Balance {
	out := Balance{Address: principal.Address, Amount: decimal.Zero}
	if s.balances == nil {
		return out
	}

	amount, err := s.balances.GetBalance(ctx, principal.Address)
	if err != nil {
		s.log.Warn().Err(err).Str("address", principal.Address).Msg("balance unavailable")
		return out
	}

	out.Amount = amount
	out.Available = true
	return out
}

// Transactions lists the entries the principal's address sent or received
func (s *WalletService) Transactions(ctx context.Context, principal core.Principal, page core.Page) (TransactionPage, error) {
	page = page.Normalize()

	items, total, err := s.txLog.List(ctx, core.TransactionFilter{Address: principal.Address}, page)
	if err != nil {
		return TransactionPage{}, err
	}

	return TransactionPage{Items: items, Total: total, Page: page}, nil
}
