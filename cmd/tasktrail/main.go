package main

import (
	"context"
	"crypto/ecdsa"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/adapters/custodial"
	"github.com/vu-thanh-do/blockchain-todu/adapters/ethereum"
	"github.com/vu-thanh-do/blockchain-todu/adapters/events"
	"github.com/vu-thanh-do/blockchain-todu/adapters/hasher"
	"github.com/vu-thanh-do/blockchain-todu/adapters/store"
	"github.com/vu-thanh-do/blockchain-todu/adapters/tokenizer"
	"github.com/vu-thanh-do/blockchain-todu/internal/cache"
	"github.com/vu-thanh-do/blockchain-todu/internal/config"
	"github.com/vu-thanh-do/blockchain-todu/internal/database"
	"github.com/vu-thanh-do/blockchain-todu/internal/jobs"
	"github.com/vu-thanh-do/blockchain-todu/internal/log"
	"github.com/vu-thanh-do/blockchain-todu/internal/server"
	"github.com/vu-thanh-do/blockchain-todu/ports"
	"github.com/vu-thanh-do/blockchain-todu/service"
	transport "github.com/vu-thanh-do/blockchain-todu/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()
	healthChecks := map[string]transport.HealthCheck{}

	var (
		dbPool     *pgxpool.Pool
		principals ports.PrincipalStore
		txLog      ports.TransactionLog
	)
	if cfg.Postgres.DSN != "" {
		if err := database.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate postgres")
		}
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		principals = store.NewPostgresPrincipalStore(dbPool)
		txLog = store.NewPostgresTransactionLog(dbPool)
		healthChecks["postgres"] = dbPool.Ping
	} else {
		logger.Warn().Msg("postgres.dsn not set, principals are kept in memory")
		principals = store.NewMemoryPrincipalStore()
		txLog = store.NewMemoryTransactionLog()
	}

	var (
		redisClient *redis.Client
		nonces      ports.NonceStore
		sweeper     jobs.Sweeper
		bus         events.Bus
	)
	if cfg.Redis.URL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		nonces = store.NewRedisNonceStore(redisClient)
		bus, err = events.NewRedisBus(redisClient, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init redis event bus")
		}
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		memoryNonces := store.NewMemoryNonceStore()
		nonces, sweeper = memoryNonces, memoryNonces
		bus = events.NewInProcessBus(logger)
	}

	signingKey := loadSigningKey(cfg.Session.SigningKeyFile, logger)
	tokens := tokenizer.NewJWTTokenizer(signingKey, cfg.Session.TTL)

	localKeys := ethereum.NewLocalKeyProvider()
	var (
		keys     ports.KeyProvider = localKeys
		balances ports.BalanceReader
	)
	if cfg.Wallet.Provider == config.WalletProviderCustodial {
		client := custodial.NewClient(custodial.Config{
			BaseURL: cfg.Wallet.Custodial.BaseURL,
			APIKey:  cfg.Wallet.Custodial.APIKey,
			Network: cfg.Wallet.Custodial.Network,
			Timeout: cfg.Wallet.Custodial.Timeout,
		})
		keys = custodial.NewFallbackKeyProvider(custodial.NewRemoteKeyProvider(client, localKeys), localKeys, logger)
		balances = client
	}

	eventPub := events.NewWatermillPublisher(bus.Publisher)
	identities := service.NewIdentities(principals, hasher.NewBcrypt(cfg.Auth.BcryptCost))
	challenges := service.NewChallenges(nonces, cfg.Auth.NonceTTL)
	authService := service.NewAuthService(
		identities,
		challenges,
		tokens,
		keys,
		localKeys,
		ethereum.NewVerifier(),
		eventPub,
		logger,
		service.AuthOptions{TrustedAddressLogin: cfg.Auth.TrustedAddressLogin},
	)
	if cfg.Auth.TrustedAddressLogin {
		logger.Warn().Msg("address-only login is enabled, sessions can be obtained without proof of key ownership")
	}

	recorderCtx, stopRecorder := context.WithCancel(ctx)
	defer stopRecorder()
	recorder := events.NewAuditRecorder(bus.Subscriber, txLog, logger)
	if err := recorder.Start(recorderCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start audit recorder")
	}

	router := transport.SetupRouter(transport.RouterDeps{
		Auth:         authService,
		Guard:        service.NewGuard(tokens, identities),
		Users:        service.NewUserService(authService, identities, eventPub, logger),
		Wallet:       service.NewWalletService(balances, txLog, logger),
		Transactions: service.NewTransactionService(txLog, logger),
		HealthChecks: healthChecks,
		CORSOrigins:  cfg.CORS.Origins,
		Log:          logger,
	})
	httpServer := server.NewHTTPServer(cfg.HTTP, logger, router)

	scheduler := jobs.NewScheduler(cfg.Jobs.NonceSweep, sweeper, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler)

	stopRecorder()
	if err := bus.Close(); err != nil {
		logger.Error().Err(err).Msg("event bus close error")
	}
	if dbPool != nil {
		dbPool.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}

// loadSigningKey falls back to an ephemeral key, which invalidates every session on restart
func loadSigningKey(path string, logger zerolog.Logger) *ecdsa.PrivateKey {
	if path != "" {
		key, err := tokenizer.LoadSigningKey(path)
		if err != nil {
			logger.Fatal().Err(err).Str("path", path).Msg("failed to load session signing key")
		}
		return key
	}

	logger.Warn().Msg("session.signingkeyfile not set, using an ephemeral signing key")
	key, err := tokenizer.GenerateSigningKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate session signing key")
	}
	return key
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	<-scheduler.Stop().Done()
}
