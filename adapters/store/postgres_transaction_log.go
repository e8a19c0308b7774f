package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.TransactionLog = (*PostgresTransactionLog)(nil)

const transactionColumns = `id, tx_hash, from_address, to_address, value, type, status, metadata, created_at`

// PostgresTransactionLog persists entries in the transactions table
type PostgresTransactionLog struct {
	pool *pgxpool.Pool
}

// NewPostgresTransactionLog creates a log on top of an open pool
func NewPostgresTransactionLog(pool *pgxpool.Pool) *PostgresTransactionLog {
	return &PostgresTransactionLog{pool: pool}
}

// Record inserts tx. A hash that is already stored is ignored.
func (l *PostgresTransactionLog) Record(ctx context.Context, tx core.Transaction) error {
	if err := l.insert(ctx, tx, "ON CONFLICT (tx_hash) DO NOTHING"); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (l *PostgresTransactionLog) Save(ctx context.Context, tx core.Transaction) error {
	if err := l.insert(ctx, tx, ""); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (l *PostgresTransactionLog) insert(ctx context.Context, tx core.Transaction, onConflict string) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	` + onConflict

	meta := tx.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = l.pool.Exec(ctx, query,
		tx.ID,
		tx.TxHash,
		tx.From,
		tx.To,
		tx.Value,
		tx.Type,
		tx.Status,
		metadata,
		tx.Timestamp,
	)
	return err
}

func (l *PostgresTransactionLog) GetByHash(ctx context.Context, hash string) (core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tx_hash = $1`

	tx, err := scanTransaction(l.pool.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Transaction{}, core.ErrTransactionNotFound
		}
		return core.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// List returns the entries matching filter, newest first, and the total count
func (l *PostgresTransactionLog) List(ctx context.Context, filter core.TransactionFilter, page core.Page) ([]core.Transaction, int, error) {
	page = page.Normalize()
	where, args := transactionWhere(filter)

	var total int
	if err := l.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM transactions%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, transactionColumns, where, len(args)+1, len(args)+2)

	rows, err := l.pool.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return out, total, nil
}

func transactionWhere(filter core.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Address != "" {
		args = append(args, filter.Address)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(lower(from_address) = lower($%d) OR lower(to_address) = lower($%d))", n, n))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		tx       core.Transaction
		metadata []byte
	)
	if err := row.Scan(
		&tx.ID,
		&tx.TxHash,
		&tx.From,
		&tx.To,
		&tx.Value,
		&tx.Type,
		&tx.Status,
		&metadata,
		&tx.Timestamp,
	); err != nil {
		return core.Transaction{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
			return core.Transaction{}, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	return tx, nil
}
