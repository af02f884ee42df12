package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/basketfy/dex-adapter/internal/api"
	"github.com/basketfy/dex-adapter/internal/catalog"
	"github.com/basketfy/dex-adapter/internal/chain"
	"github.com/basketfy/dex-adapter/internal/coingecko"
	"github.com/basketfy/dex-adapter/internal/config"
	"github.com/basketfy/dex-adapter/internal/engine"
	"github.com/basketfy/dex-adapter/internal/jobs"
	"github.com/basketfy/dex-adapter/internal/okx"
	"github.com/basketfy/dex-adapter/internal/publisher"
	"github.com/basketfy/dex-adapter/internal/rabbitmq"
	"github.com/basketfy/dex-adapter/internal/rate"
	intsecrets "github.com/basketfy/dex-adapter/internal/secrets"
	"github.com/basketfy/dex-adapter/internal/store"
	"github.com/basketfy/dex-adapter/internal/swap"
	"github.com/basketfy/dex-adapter/pkg/logger"
	pkgsecrets "github.com/basketfy/dex-adapter/pkg/secrets"
	"github.com/basketfy/dex-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [dex-adapter]...")
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
	}

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}
	defer nc.Drain() //nolint:errcheck

	// --- Credentials (AWS Secrets Manager with env fallback) ---
	secretCache := pkgsecrets.NewCache[okx.Credentials](cfg.SecretCacheTTL)
	var awsProvider pkgsecrets.Provider
	if cfg.OKXSecretName != "" {
		awsProvider, err = pkgsecrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Warnw("failed to init AWS provider, falling back to env credentials", "error", err)
		}
	}
	resolver := intsecrets.NewResolver(logger.L(), awsProvider, secretCache, cfg.OKXSecretName, okx.Credentials{
		APIKey:        cfg.OKXAPIKey,
		APISecret:     cfg.OKXAPISecret,
		APIPassphrase: cfg.OKXAPIPassphrase,
		ProjectID:     cfg.OKXProjectID,
	})
	creds, err := resolver.Resolve(ctx)
	if err != nil {
		logg.Fatalw("failed to resolve aggregator credentials", "error", err)
	}
	logg.Infow("aggregator credentials resolved", "api_key", utils.MaskKey(creds.APIKey))

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		Cooldown:          1 * time.Second,
	})

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{}, logger.L())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}
	defer st.Close() //nolint:errcheck

	// --- Publisher ---
	pub, err := publisher.New(logger.L(), nc, cfg.ServiceName)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}

	// --- Provider clients ---
	okxClient := okx.NewClient(logger.L(), cfg.OKXBaseURL, creds, rateMgr)
	geckoClient := coingecko.NewClient(logger.L(), cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey, rateMgr)

	// --- Token catalog (builder + cache + refresh loop) ---
	builder := catalog.NewBuilder(logger.L(), okxClient, geckoClient, cfg.CoinGeckoCategory)
	catalogCache := catalog.NewCache(logger.L(), st.Redis(), cfg.CatalogTTL)
	refresher := jobs.NewRefresher(logger.L(), builder, catalogCache, pub, cfg.ChainID, cfg.CatalogRefreshInterval)
	go refresher.Run(ctx)

	// --- Execution engine ---
	feePayer, err := solana.PrivateKeyFromBase58(cfg.FeePayerKey)
	if err != nil {
		logg.Fatalw("invalid fee payer key", "error", err)
	}
	chainClient := chain.NewClient(logger.L(), cfg.SolanaRPCURL)
	eng := engine.New(logger.L(), chainClient, feePayer)

	// --- Swap orchestrator ---
	swapSvc := swap.New(logger.L(), okxClient, eng, pub, st)

	// --- RabbitMQ command consumer (optional) ---
	if cfg.ConsumerEnabled && cfg.RabbitURL != "" {
		consumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, "okx", swapSvc, logger.L())
		if err != nil {
			logg.Fatalw("failed to init RabbitMQ consumer", "error", err)
		}
		defer consumer.Close() //nolint:errcheck
		if err := consumer.Start(ctx); err != nil {
			logg.Fatalw("failed to start RabbitMQ consumer", "error", err)
		}
	}

	// --- HTTP API ---
	app := fiber.New()
	h := &api.Handler{
		Logger:  logger.L(),
		Quotes:  okxClient,
		Swaps:   swapSvc,
		Catalog: catalogCache,
		Store:   st,
		ChainID: cfg.ChainID,
	}
	api.RegisterRoutes(app, h)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[dex-adapter] running",
		"nats", cfg.NATSURL,
		"chain_id", cfg.ChainID,
		"rpc", cfg.SolanaRPCURL,
		"catalog_refresh", cfg.CatalogRefreshInterval)

	<-ctx.Done()
	stop()
	logg.Info("shutting down [dex-adapter]...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.ShutdownWithContext(shutdownCtx) //nolint:errcheck
}
