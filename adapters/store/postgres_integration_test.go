//go:build integration

package store_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vu-thanh-do/blockchain-todu/adapters/store"
	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/internal/config"
	"github.com/vu-thanh-do/blockchain-todu/internal/database"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "tasktrail_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/tasktrail_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresStores(t *testing.T) {
	ctx := context.Background()

	require.Eventually(t, func() bool {
		return database.Migrate(ctx, dsn) == nil
	}, 30*time.Second, 500*time.Millisecond)

	pool, err := database.NewPostgresPool(ctx, config.PostgresConfig{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	t.Run("principal_store", func(t *testing.T) {
		s := store.NewPostgresPrincipalStore(pool)
		now := time.Now().UTC().Truncate(time.Microsecond)
		p := core.Principal{
			ID:         uuid.NewString(),
			Address:    "0x00000000000000000000000000000000000000aa",
			Username:   "alice",
			Role:       core.RoleTeamLead,
			Status:     core.StatusActive,
			SecretHash: "hash",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		require.NoError(t, s.Insert(ctx, p))

		dup := p
		dup.ID = uuid.NewString()
		assert.ErrorIs(t, s.Insert(ctx, dup), core.ErrDuplicateIdentity)

		withSecret, err := s.GetByAddress(ctx, p.Address, true)
		require.NoError(t, err)
		assert.Equal(t, "hash", withSecret.SecretHash)
		assert.Equal(t, core.RoleTeamLead, withSecret.Role)

		byID, err := s.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, byID.SecretHash)

		status := core.StatusInactive
		updated, err := s.Update(ctx, p.ID, core.PrincipalUpdate{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, core.StatusInactive, updated.Status)
		assert.Equal(t, "alice", updated.Username)

		_, err = s.Update(ctx, uuid.NewString(), core.PrincipalUpdate{Status: &status})
		assert.ErrorIs(t, err, core.ErrPrincipalNotFound)

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, s.Delete(ctx, p.ID))
		_, err = s.GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, core.ErrPrincipalNotFound)
	})

	t.Run("principal_store_malformed_id", func(t *testing.T) {
		s := store.NewPostgresPrincipalStore(pool)
		username := "x"

		_, err := s.GetByID(ctx, "abc")
		assert.ErrorIs(t, err, core.ErrPrincipalNotFound)

		_, err = s.Update(ctx, "abc", core.PrincipalUpdate{Username: &username})
		assert.ErrorIs(t, err, core.ErrPrincipalNotFound)

		assert.ErrorIs(t, s.Delete(ctx, "abc"), core.ErrPrincipalNotFound)
	})

	t.Run("transaction_log", func(t *testing.T) {
		l := store.NewPostgresTransactionLog(pool)
		base := time.Now().UTC().Truncate(time.Second)

		for i := 0; i < 3; i++ {
			event := core.AuthEvent{
				Type:        core.EventSecretLogin,
				PrincipalID: "p-1",
				Address:     "0xbb",
				Username:    "bob",
				OccurredAt:  base.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, l.Record(ctx, core.TransactionFromEvent(uuid.NewString(), event)))
		}

		// same hash again is ignored
		again := core.TransactionFromEvent(uuid.NewString(), core.AuthEvent{
			Type: core.EventSecretLogin, PrincipalID: "p-1", Address: "0xbb", OccurredAt: base,
		})
		require.NoError(t, l.Record(ctx, again))

		page, total, err := l.List(ctx, core.TransactionFilter{Address: "0xBB"}, core.Page{Number: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 2)
		assert.True(t, page[0].Timestamp.After(page[1].Timestamp))
		assert.Equal(t, "bob", page[0].Metadata["username"])

		saved := core.Transaction{
			ID:        uuid.NewString(),
			TxHash:    "0xfeed",
			From:      "0xcc",
			To:        "0xbb",
			Value:     "0",
			Type:      "create_task",
			Status:    core.TxPending,
			Timestamp: base.Add(time.Minute),
		}
		require.NoError(t, l.Save(ctx, saved))
		saved.ID = uuid.NewString()
		assert.ErrorIs(t, l.Save(ctx, saved), core.ErrDuplicateTransaction)

		got, err := l.GetByHash(ctx, "0xfeed")
		require.NoError(t, err)
		assert.Equal(t, "0xcc", got.From)
		_, err = l.GetByHash(ctx, "0xmissing")
		assert.ErrorIs(t, err, core.ErrTransactionNotFound)

		// received transactions count for the recipient too
		_, total, err = l.List(ctx, core.TransactionFilter{Address: "0xbb"}, core.Page{})
		require.NoError(t, err)
		assert.Equal(t, 4, total)

		pending, total, err := l.List(ctx, core.TransactionFilter{Address: "0xbb", Status: core.TxPending}, core.Page{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "0xfeed", pending[0].TxHash)

		_, total, err = l.List(ctx, core.TransactionFilter{Type: core.EventSecretLogin}, core.Page{Number: math.MaxInt64})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})
}
