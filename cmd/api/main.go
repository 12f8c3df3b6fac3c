package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/http/middleware"
	nsqMessaging "wallet-ledger/internal/adapter/messaging/nsq"
	memStorage "wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/adapter/storage/seed"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// stores groups the persistence ports of one storage driver.
type stores struct {
	wallets    ports.WalletStore
	txns       ports.TransactionRecorder
	merchants  ports.MerchantRepository
	transactor ports.DBTransactor
	seeder     seed.Target
	health     ports.HealthChecker
	close      func()
}

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Ledger")

	ctx := context.Background()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer st.close()

	if cfg.Storage.SeedFile != "" {
		data, err := seed.Load(cfg.Storage.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load seed file")
		}
		if err := seed.Apply(ctx, st.seeder, data, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply seed data")
		}
	}

	healthCheckers := []ports.HealthChecker{st.health}

	// Optional Redis-backed stores
	var (
		referenceRegistry ports.ReferenceRegistry
		idempotencyCache  ports.IdempotencyCache
		rateLimitStore    middleware.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		referenceRegistry = redisStorage.NewReferenceRegistry(rdb)
		idempotencyCache = redisStorage.NewIdempotencyCache(rdb)
		if cfg.RateLimit.Enabled {
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		}
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: no reference registry, idempotency keys or rate limiting")
	}

	// Optional event publisher
	var publisher ports.EventPublisher
	if cfg.NSQ.Enabled {
		p, err := nsqMessaging.NewPublisher(cfg.NSQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to nsqd")
		}
		defer p.Stop()
		log.Info().Str("topic", cfg.NSQ.Topic).Msg("NSQ publisher ready")

		publisher = p
		healthCheckers = append(healthCheckers, p)
	}

	// Initialize business services
	ledgerSvc := service.NewLedgerService(
		st.wallets,
		st.txns,
		st.merchants,
		st.transactor,
		referenceRegistry,
		publisher,
		cfg.Ledger,
		logger.Component(log, "ledger"),
	)
	querySvc := service.NewQueryService(st.wallets, st.txns, st.merchants)

	// Load OpenAPI document for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetOpenAPISpec(specBytes)
		log.Info().Msg("OpenAPI document loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI document not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		QuerySvc:       querySvc,
		RateLimitStore: rateLimitStore,
		RateLimitRule: middleware.RateLimitRule{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		},
		IdempotencyCache: idempotencyCache,
		IdempotencyTTL:   cfg.Ledger.IdempotencyTTL,
		HealthCheckers:   healthCheckers,
		Logger:           logger.Component(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		store := memStorage.NewStore()
		log.Warn().Msg("Using in-memory storage; data is lost on exit")
		return &stores{
			wallets:    memStorage.NewWalletRepo(store),
			txns:       memStorage.NewTransactionRepo(store),
			merchants:  memStorage.NewMerchantRepo(store),
			transactor: store,
			seeder:     store,
			health:     memStorage.HealthCheck{},
			close:      func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	log.Info().Msg("PostgreSQL connected")

	if cfg.Storage.Migrate {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &stores{
		wallets:    pgStorage.NewWalletRepo(pool),
		txns:       pgStorage.NewTransactionRepo(pool),
		merchants:  pgStorage.NewMerchantRepo(pool),
		transactor: pgStorage.NewTransactor(pool),
		seeder:     pgStorage.NewSeeder(pool),
		health:     pgStorage.NewHealthCheck(pool),
		close:      pool.Close,
	}, nil
}
