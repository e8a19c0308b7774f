package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// SaveTransactionInput is a transaction reported by a client after it was sent on chain
type SaveTransactionInput struct {
	TxHash    string
	From      string
	To        string
	Value     string
	Type      string
	Status    string
	Metadata  map[string]string
	Timestamp time.Time
}

// TransactionService stores and queries the transaction log on behalf of authenticated
// principals
type TransactionService struct {
	txLog ports.TransactionLog
	log   zerolog.Logger
	now   func() time.Time
}

func NewTransactionService(txLog ports.TransactionLog, log zerolog.Logger) *TransactionService {
	return &TransactionService{
		txLog: txLog,
		log:   log.With().Str("component", "transactions").Logger(),
		now:   time.Now,
	}
}

// Save records a client-reported transaction. Only admins may record a transaction sent from
// an address other than their own.
func (s *TransactionService) Save(ctx context.Context, actor core.Principal, in SaveTransactionInput) (core.Transaction, error) {
	tx := core.Transaction{
		TxHash:    strings.TrimSpace(in.TxHash),
		From:      strings.TrimSpace(in.From),
		To:        strings.TrimSpace(in.To),
		Value:     strings.TrimSpace(in.Value),
		Type:      core.AuthEventType(strings.TrimSpace(in.Type)),
		Metadata:  in.Metadata,
		Timestamp: in.Timestamp,
	}
	if tx.TxHash == "" || tx.From == "" || tx.To == "" || tx.Type == "" {
		return core.Transaction{}, core.ErrMissingTransactionField
	}

	status, err := core.ParseTxStatus(in.Status)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Status = status

	if actor.Role != core.RoleAdmin && !strings.EqualFold(tx.From, actor.Address) {
		return core.Transaction{}, core.ErrForeignSender
	}

	if tx.Value == "" {
		tx.Value = "0"
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now().UTC()
	}
	tx.ID = uuid.NewString()

	if err := s.txLog.Save(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	s.log.Info().
		Str("tx_hash", tx.TxHash).
		Str("type", string(tx.Type)).
		Str("actor_id", actor.ID).
		Msg("transaction saved")
	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, hash string) (core.Transaction, error) {
	return s.txLog.GetByHash(ctx, strings.TrimSpace(hash))
}

// ListByAddress lists transactions sent or received by address, optionally narrowed by type
// and status
func (s *TransactionService) ListByAddress(ctx context.Context, address, txType, status string, page core.Page) (TransactionPage, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return TransactionPage{}, core.ErrInvalidAddress
	}
	return s.list(ctx, core.TransactionFilter{Address: address, Type: core.AuthEventType(txType)}, status, page)
}

func (s *TransactionService) ListByType(ctx context.Context, txType, status string, page core.Page) (TransactionPage, error) {
	if strings.TrimSpace(txType) == "" {
		return TransactionPage{}, core.ErrMissingTransactionField
	}
	return s.list(ctx, core.TransactionFilter{Type: core.AuthEventType(txType)}, status, page)
}

func (s *TransactionService) list(ctx context.Context, filter core.TransactionFilter, status string, page core.Page) (TransactionPage, error) {
	if status != "" {
		parsed, err := core.ParseTxStatus(status)
		if err != nil {
			return TransactionPage{}, err
		}
		filter.Status = parsed
	}

	page = page.Normalize()
	items, total, err := s.txLog.List(ctx, filter, page)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	return TransactionPage{Items: items, Total: total, Page: page}, nil
}
