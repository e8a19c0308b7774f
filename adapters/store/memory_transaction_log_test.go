package store

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

func seedTransactions(t *testing.T, l *MemoryTransactionLog, n int, from string) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, l.Record(context.Background(), core.Transaction{
			ID:        fmt.Sprintf("id-%d", i),
			TxHash:    fmt.Sprintf("hash-%d", i),
			From:      from,
			To:        "system",
			Type:      core.EventSecretLogin,
			Status:    core.TxSuccess,
			Timestamp: time.Unix(int64(i), 0),
		}))
	}
}

func TestMemoryTransactionLogPaging(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryTransactionLog()
	seedTransactions(t, l, 5, "0xaa")
	require.NoError(t, l.Record(ctx, core.Transaction{ID: "other", TxHash: "other", From: "0xbb"}))

	byAddress := core.TransactionFilter{Address: "0xaa"}

	page, total, err := l.List(ctx, byAddress, core.Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "hash-4", page[0].TxHash)
	assert.Equal(t, "hash-3", page[1].TxHash)

	page, _, err = l.List(ctx, byAddress, core.Page{Number: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "hash-0", page[0].TxHash)

	page, total, err = l.List(ctx, byAddress, core.Page{Number: 9, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestMemoryTransactionLogHugePageNumber(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryTransactionLog()
	seedTransactions(t, l, 3, "0xaa")

	page, total, err := l.List(ctx, core.TransactionFilter{Address: "0xaa"}, core.Page{Number: math.MaxInt64, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, page)
}

func TestMemoryTransactionLogIgnoresDuplicateHash(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryTransactionLog()

	tx := core.Transaction{ID: "1", TxHash: "h", From: "0xaa"}
	require.NoError(t, l.Record(ctx, tx))
	tx.ID = "2"
	require.NoError(t, l.Record(ctx, tx))
	assert.ErrorIs(t, l.Save(ctx, tx), core.ErrDuplicateTransaction)

	_, total, err := l.List(ctx, core.TransactionFilter{Address: "0xaa"}, core.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	got, err := l.GetByHash(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	_, err = l.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)
}

func TestMemoryTransactionLogFilters(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryTransactionLog()

	entries := []core.Transaction{
		{ID: "1", TxHash: "a", From: "0xAA", To: "0xbb", Type: "create_task", Status: core.TxPending},
		{ID: "2", TxHash: "b", From: "0xbb", To: "0xaa", Type: "create_task", Status: core.TxSuccess},
		{ID: "3", TxHash: "c", From: "0xcc", To: "system", Type: core.EventSecretLogin, Status: core.TxSuccess},
	}
	for _, tx := range entries {
		require.NoError(t, l.Save(ctx, tx))
	}

	tests := []struct {
		name   string
		filter core.TransactionFilter
		hashes []string
	}{
		{"sender or recipient ignoring case", core.TransactionFilter{Address: "0xaa"}, []string{"b", "a"}},
		{"address and status", core.TransactionFilter{Address: "0xaa", Status: core.TxPending}, []string{"a"}},
		{"type", core.TransactionFilter{Type: "create_task"}, []string{"b", "a"}},
		{"type and status", core.TransactionFilter{Type: core.EventSecretLogin, Status: core.TxFailed}, nil},
		{"everything", core.TransactionFilter{}, []string{"c", "b", "a"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := l.List(ctx, tc.filter, core.Page{})
			require.NoError(t, err)
			assert.Equal(t, len(tc.hashes), total)

			var hashes []string
			for _, tx := range items {
				hashes = append(hashes, tx.TxHash)
			}
			assert.Equal(t, tc.hashes, hashes)
		})
	}
}
