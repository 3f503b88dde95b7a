package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/aggregator"
	"github.com/feral-file/ff-storefront/internal/api/middleware"
	"github.com/feral-file/ff-storefront/internal/api/realtime"
	"github.com/feral-file/ff-storefront/internal/api/rest"
	"github.com/feral-file/ff-storefront/internal/api/server"
	"github.com/feral-file/ff-storefront/internal/bidding"
	"github.com/feral-file/ff-storefront/internal/config"
	"github.com/feral-file/ff-storefront/internal/feed"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/opensea"
	"github.com/feral-file/ff-storefront/internal/pubsub"
	"github.com/feral-file/ff-storefront/internal/ratelimit"
	"github.com/feral-file/ff-storefront/internal/sources"
	"github.com/feral-file/ff-storefront/internal/sources/auctions"
	"github.com/feral-file/ff-storefront/internal/sources/indexer"
	"github.com/feral-file/ff-storefront/internal/sources/marketplace"
	"github.com/feral-file/ff-storefront/internal/store"
	"github.com/feral-file/ff-storefront/internal/uri"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadStorefrontConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "storefront",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Storefront")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, 0); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.Vendors.HTTPTimeout, cfg.Vendors.MaxRetryElapsed)

	// Redis backs the distributed rate limiter and the redis bid transport
	var redisClient adapter.RedisClient
	if cfg.RateLimit.Distributed || cfg.PubSub.Driver == config.PubSubDriverRedis {
		redisClient = adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
	}

	// Rate limiting proxy shared by the vendor clients
	limit := ratelimit.ProviderLimit{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}
	var limiterRedis adapter.RedisClient
	if cfg.RateLimit.Distributed {
		limiterRedis = redisClient
	}
	rateLimitProxy, err := ratelimit.NewProxy(ratelimit.Config{
		Providers: map[string]ratelimit.ProviderLimit{
			opensea.PROVIDER_NAME: limit,
			moralis.PROVIDER_NAME: limit,
		},
		KeyPrefix: "ff-storefront:ratelimit:",
		PoolSize:  cfg.RateLimit.PoolSize,
	}, limiterRedis, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create rate limit proxy", zap.Error(err))
	}
	defer func() {
		if err := rateLimitProxy.Close(); err != nil {
			logger.Warn("Failed to close rate limit proxy", zap.Error(err))
		}
	}()

	openseaClient := opensea.NewClient(httpClient, rateLimitProxy, cfg.Vendors.OpenSeaURL, cfg.Vendors.OpenSeaAPIKey, jsonAdapter)
	moralisClient := moralis.NewClient(httpClient, rateLimitProxy, cfg.Vendors.MoralisURL, cfg.Vendors.MoralisAPIKey, jsonAdapter)
	if cfg.Vendors.OpenSeaAPIKey == "" {
		logger.WarnCtx(ctx, "OpenSea API key not configured, the marketplace source will be unavailable")
	}
	if cfg.Vendors.MoralisAPIKey == "" {
		logger.WarnCtx(ctx, "Moralis API key not configured, the indexer source will be unavailable")
	}

	// Catalog sources, in merge order
	auctionSource := auctions.New(dataStore, clock)
	marketplaceSource := marketplace.New(openseaClient, cfg.Vendors.OpenSeaCollections)
	indexerSource := indexer.New(moralisClient, cfg.Vendors.IndexerChain, indexer.RegistryFromConfig(cfg.Vendors.IndexerContracts))

	resolver, err := uri.NewResolver(cfg.URI.IPFSGateways)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create uri resolver", zap.Error(err))
	}
	prober := uri.NewProber(resolver, adapter.NewHTTPClient(cfg.URI.ProbeTimeout, cfg.Vendors.MaxRetryElapsed))

	agg := aggregator.New(aggregator.Config{Concurrency: cfg.Feeds.AggregatorConcurrency}, aggregator.Sources{
		Catalog:   []sources.Source{auctionSource, marketplaceSource, indexerSource},
		Lookups:   []sources.Lookup{auctionSource, marketplaceSource, indexerSource},
		Searchers: []sources.Searcher{marketplaceSource},
	}, resolver)
	defer agg.Close()

	scheduler := feed.NewScheduler(feed.Config{
		Intervals: map[feed.Class]time.Duration{
			feed.ClassWallet:  cfg.Feeds.WalletInterval,
			feed.ClassLive:    cfg.Feeds.LiveInterval,
			feed.ClassSidebar: cfg.Feeds.SidebarInterval,
		},
		LimitPerCategory: cfg.Feeds.LimitPerCategory,
		MaxFeeds:         cfg.Feeds.MaxFeeds,
	}, agg, clock)
	defer scheduler.Close()

	// Bid event transport
	broker, closeBroker := newBroker(ctx, cfg, redisClient, jsonAdapter)
	defer closeBroker()
	bids := bidding.New(dataStore, broker, clock)

	authCfg := middleware.AuthConfig{
		JWTPublicKey: cfg.Auth.JWTPublicKey,
		APIKeys:      cfg.Auth.APIKeys,
	}
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Auth:         authCfg,
		Realtime: realtime.Config{
			Tick:           cfg.Auction.Tick,
			AllowedOrigins: cfg.Server.CORSOrigins,
		},
	}, rest.Deps{
		Feeds:      scheduler,
		Aggregator: agg,
		Prober:     prober,
		Store:      dataStore,
		Bids:       bids,
		JSON:       jsonAdapter,
		Clock:      clock,
	}, realtime.Deps{
		Store:      dataStore,
		Subscriber: broker,
		Bids:       bids,
		Feeds:      scheduler,
		Clock:      clock,
		JSON:       jsonAdapter,
	})

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	logger.Info("Storefront stopped")
}

// newBroker builds the configured bid event transport and the function releasing its connection
func newBroker(ctx context.Context, cfg *config.StorefrontConfig, redisClient adapter.RedisClient, jsonAdapter adapter.JSON) (pubsub.Broker, func()) {
	switch cfg.PubSub.Driver {
	case config.PubSubDriverRedis:
		logger.InfoCtx(ctx, "Using redis bid transport", zap.String("addr", cfg.Redis.Addr))
		return pubsub.NewRedis(redisClient, jsonAdapter, cfg.Redis.ChannelPrefix), func() {}

	case config.PubSubDriverNATS:
		nc, err := pubsub.ConnectNATS(pubsub.NATSConfig{
			URL:            cfg.NATS.URL,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsConnector())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Using NATS bid transport", zap.String("url", nc.ConnectedUrl()))
		return pubsub.NewNATS(nc, jsonAdapter, cfg.NATS.SubjectPrefix), nc.Close

	default:
		logger.InfoCtx(ctx, "Using in-process bid transport")
		return pubsub.NewMemory(), func() {}
	}
}
