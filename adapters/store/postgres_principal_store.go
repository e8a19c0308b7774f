package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.PrincipalStore = (*PostgresPrincipalStore)(nil)

// uniqueViolation is the SQLSTATE postgres reports for a unique index collision
const uniqueViolation = "23505"

// PostgresPrincipalStore persists principals in the principals table
type PostgresPrincipalStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPrincipalStore creates a store on top of an open pool
func NewPostgresPrincipalStore(pool *pgxpool.Pool) *PostgresPrincipalStore {
	return &PostgresPrincipalStore{pool: pool}
}

func (s *PostgresPrincipalStore) Insert(ctx context.Context, p core.Principal) error {
	const query = `
		INSERT INTO principals (
			id, wallet_address, username, role, status, secret_hash, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.Address,
		p.Username,
		p.Role,
		p.Status,
		p.SecretHash,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrDuplicateIdentity
		}
		return fmt.Errorf("failed to insert principal: %w", err)
	}
	return nil
}

func (s *PostgresPrincipalStore) GetByAddress(ctx context.Context, address string, withSecret bool) (core.Principal, error) {
	const query = `
		SELECT id, wallet_address, username, role, status, secret_hash, created_at, updated_at
		FROM principals WHERE wallet_address = $1
	`

	p, err := scanPrincipal(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		return core.Principal{}, err
	}
	if !withSecret {
		p.SecretHash = ""
	}
	return p, nil
}

func (s *PostgresPrincipalStore) GetByID(ctx context.Context, id string) (core.Principal, error) {
	const query = `
		SELECT id, wallet_address, username, role, status, '', created_at, updated_at
		FROM principals WHERE id = $1
	`

	if !isUUID(id) {
		return core.Principal{}, core.ErrPrincipalNotFound
	}
	return scanPrincipal(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresPrincipalStore) List(ctx context.Context) ([]core.Principal, error) {
	const query = `
		SELECT id, wallet_address, username, role, status, '', created_at, updated_at
		FROM principals ORDER BY created_at DESC, id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	defer rows.Close()

	out := []core.Principal{}
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	return out, nil
}

func (s *PostgresPrincipalStore) Update(ctx context.Context, id string, update core.PrincipalUpdate) (core.Principal, error) {
	const query = `
		UPDATE principals SET
			username = COALESCE($2, username),
			role = COALESCE($3, role),
			status = COALESCE($4, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, wallet_address, username, role, status, '', created_at, updated_at
	`

	if !isUUID(id) {
		return core.Principal{}, core.ErrPrincipalNotFound
	}
	return scanPrincipal(s.pool.QueryRow(ctx, query, id, update.Username, update.Role, update.Status))
}

func (s *PostgresPrincipalStore) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return core.ErrPrincipalNotFound
	}
	cmd, err := s.pool.Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete principal: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return core.ErrPrincipalNotFound
	}
	return nil
}

// isUUID reports whether id can match the uuid primary key. Anything else would be rejected by
// postgres with an invalid_text_representation error rather than finding no row.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanPrincipal(row pgx.Row) (core.Principal, error) {
	var p core.Principal
	if err := row.Scan(
		&p.ID,
		&p.Address,
		&p.Username,
		&p.Role,
		&p.Status,
		&p.SecretHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Principal{}, core.ErrPrincipalNotFound
		}
		return core.Principal{}, fmt.Errorf("failed to scan principal: %w", err)
	}
	return p, nil
}
