package store

import (
	"context"
	"errors"
	"sync"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.TransactionLog = (*MemoryTransactionLog)(nil)

// MemoryTransactionLog keeps entries in insertion order
type MemoryTransactionLog struct {
	entries []core.Transaction
	byHash  map[string]int
	mu      sync.RWMutex
}

// NewMemoryTransactionLog creates an empty log
func NewMemoryTransactionLog() *MemoryTransactionLog {
	return &MemoryTransactionLog{byHash: make(map[string]int)}
}

// Record appends tx. Entries with a hash already present are ignored so redelivered events
// are recorded once.
func (l *MemoryTransactionLog) Record(ctx context.Context, tx core.Transaction) error {
	err := l.Save(ctx, tx)
	if errors.Is(err, core.ErrDuplicateTransaction) {
		return nil
	}
	return err
}

func (l *MemoryTransactionLog) Save(_ context.Context, tx core.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byHash[tx.TxHash]; exists {
		return core.ErrDuplicateTransaction
	}
	l.byHash[tx.TxHash] = len(l.entries)
	l.entries = append(l.entries, tx)
	return nil
}

func (l *MemoryTransactionLog) GetByHash(_ context.Context, hash string) (core.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byHash[hash]
	if !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return l.entries[i], nil
}

// List returns the entries matching filter, newest first, and the total count
func (l *MemoryTransactionLog) List(_ context.Context, filter core.TransactionFilter, page core.Page) ([]core.Transaction, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	page = page.Normalize()

	var matched []core.Transaction
	for i := len(l.entries) - 1; i >= 0; i-- {
		if filter.Matches(l.entries[i]) {
			matched = append(matched, l.entries[i])
		}
	}

	total := len(matched)
	start := page.Offset()
	if start < 0 || start >= total {
		return []core.Transaction{}, total, nil
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}
