package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/refdata/internal/api"
	"github.com/Checker-Finance/refdata/internal/cache"
	"github.com/Checker-Finance/refdata/internal/config"
	"github.com/Checker-Finance/refdata/internal/enrich"
	"github.com/Checker-Finance/refdata/internal/fieldmap"
	"github.com/Checker-Finance/refdata/internal/flatten"
	"github.com/Checker-Finance/refdata/internal/gleif"
	"github.com/Checker-Finance/refdata/internal/ingest"
	"github.com/Checker-Finance/refdata/internal/instrument"
	"github.com/Checker-Finance/refdata/internal/jobs"
	"github.com/Checker-Finance/refdata/internal/legacy"
	"github.com/Checker-Finance/refdata/internal/openfigi"
	"github.com/Checker-Finance/refdata/internal/publisher"
	"github.com/Checker-Finance/refdata/internal/rate"
	internalsecrets "github.com/Checker-Finance/refdata/internal/secrets"
	"github.com/Checker-Finance/refdata/internal/source"
	"github.com/Checker-Finance/refdata/internal/store"
	"github.com/Checker-Finance/refdata/pkg/logger"
	"github.com/Checker-Finance/refdata/pkg/secrets"
	"github.com/Checker-Finance/refdata/pkg/utils"
)

func main() {
	watch := flag.Duration("watch", 0, "re-ingest the sources at this interval instead of exiting after one run")
	serve := flag.Bool("serve", false, "keep the ops server running after a single run")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	locations := flag.Args()
	if len(locations) == 0 {
		locations = cfg.Sources
	}
	if len(locations) == 0 {
		fmt.Fprintln(os.Stderr, "usage: refdata-ingest [-watch 24h] [-serve] <file-or-url>...")
		os.Exit(2)
	}

	if err := run(ctx, cfg, locations, *watch, *serve); err != nil {
		logger.S().Errorw("refdata.run_failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, locations []string, watch time.Duration, serve bool) error {
	logg := logger.L()
	logg.Info("starting [refdata-ingest]...",
		zap.String("env", cfg.Env),
		zap.Strings("sources", locations))

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{})
	rateMgr.Configure(openfigi.ServiceName, rate.Config{RequestsPerSecond: cfg.OpenFIGIRPS, Burst: cfg.OpenFIGIBurst})
	rateMgr.Configure(gleif.ServiceName, rate.Config{RequestsPerSecond: cfg.GLEIFRPS, Burst: cfg.GLEIFBurst})

	var checks []api.HealthCheck

	// --- Source document cache ---
	docCache, err := cache.NewFileCache(cfg.CacheDir, cfg.CacheTTL, logg)
	if err != nil {
		return fmt.Errorf("init file cache: %w", err)
	}
	pruner := jobs.NewCachePruner(logg, docCache, cfg.CachePruneInterval, cfg.CacheRetention)
	go pruner.Start(ctx)
	defer pruner.Stop()

	loader := source.NewLoader(
		source.NewFetcher(source.FetcherConfig{Timeout: cfg.DownloadTimeout, RetryMax: cfg.RetryMax}, logg, rateMgr),
		flatten.NewParser(logg),
		docCache,
		logg,
	)

	// --- Store (Postgres, or memory when no DATABASE_URL) ---
	var (
		repo instrument.Repository
		opts []ingest.Option
	)
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN", zap.String("dsn", utils.MaskDSN(cfg.DatabaseURL)))
		pg, err := store.NewPool(ctx, cfg.DatabaseURL, store.PGPoolConfig{
			MaxConns:          int32(cfg.PGMaxConns),
			MinConns:          int32(cfg.PGMinConns),
			MaxConnLifetime:   cfg.PGMaxConnLifetime,
			MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
			HealthCheckPeriod: cfg.PGHealthCheckPeriod,
		})
		if err != nil {
			return err
		}
		defer pg.Close()
		pgRepo := store.NewPGRepository(pg, logg)
		if err := pgRepo.Migrate(ctx); err != nil {
			return err
		}
		repo = pgRepo
		checks = append(checks, api.HealthCheck{Name: "store", Check: pgRepo.HealthCheck})

		// --- Legacy flat table mirror ---
		if cfg.LegacyMirror {
			opts = append(opts, ingest.WithMirror(legacy.NewFlatTableWriter(pg, logg, cfg.ServiceName)))
		}
	} else {
		logg.Warn("DATABASE_URL not configured; instruments are kept in memory only")
		repo = store.NewMemoryRepository()
	}

	// --- Enrichment ---
	if cfg.EnrichmentEnabled {
		globalID, entities, closeLookups, err := buildLookups(ctx, cfg, rateMgr, logg, &checks)
		if err != nil {
			return err
		}
		defer closeLookups()
		opts = append(opts, ingest.WithEnrichment(globalID, entities))
	}

	// --- Connect to NATS ---
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		pub, err := publisher.New(nc, cfg.ServiceName)
		if err != nil {
			nc.Close()
			return fmt.Errorf("failed to init publisher: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logg.Warn("nats.drain_failed", zap.Error(err))
			}
		}()
		opts = append(opts, ingest.WithPublisher(pub))
		checks = append(checks, api.HealthCheck{Name: "nats", Check: func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New("disconnected")
			}
			return nc.FlushTimeout(time.Second)
		}})
	} else {
		logg.Warn("NATS_URL not configured; instrument events disabled")
	}

	opts = append(opts, ingest.WithWorkers(cfg.Workers))
	pipeline := ingest.New(loader, fieldmap.NewMapper(), instrument.NewBuilder(logg), repo, logg, opts...)

	// --- Fiber ops server ---
	status := api.NewRunStatus()
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTPReadTimeout,
		WriteTimeout:          cfg.HTTPWriteTimeout,
		IdleTimeout:           cfg.HTTPIdleTimeout,
		DisableStartupMessage: true,
	})
	api.RegisterRoutes(app, status, checks...)
	go func() {
		logg.Info("ops server listening", zap.Int("port", cfg.OpsPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.OpsPort)); err != nil {
			logg.Error("fiber.listen_failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logg.Warn("fiber.shutdown_failed", zap.Error(err))
		}
	}()

	srcs := make([]source.Source, 0, len(locations))
	for _, loc := range locations {
		srcs = append(srcs, source.Parse(loc))
	}

	runErr := ingestOnce(ctx, pipeline, status, srcs, logg)
	if watch <= 0 {
		if serve && runErr == nil {
			<-ctx.Done()
		}
		logg.Info("shutting down [refdata-ingest]...")
		return runErr
	}

	ticker := time.NewTicker(watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logg.Info("shutting down [refdata-ingest]...")
			return nil
		case <-ticker.C:
			_ = ingestOnce(ctx, pipeline, status, srcs, logg)
		}
	}
}

func ingestOnce(ctx context.Context, p *ingest.Pipeline, status *api.RunStatus, srcs []source.Source, logg *zap.Logger) error {
	status.Start(time.Now())
	reports, err := p.IngestFiles(ctx, srcs)
	status.Finish(time.Now(), reports, err)

	failedFiles := 0
	for _, rep := range reports {
		if rep.Err != nil {
			failedFiles++
		}
		logg.Info("refdata.file_summary",
			zap.String("source", rep.Source),
			zap.Int("records", rep.Records),
			zap.Bool("no_data", rep.NoData),
			zap.Int("built", rep.Built),
			zap.Int("overwritten", rep.Overwritten),
			zap.Int("failed", rep.Failed),
			zap.Int("enriched", rep.Enriched),
			zap.Int("published", rep.Published),
			zap.Int("warnings", len(rep.Warnings)),
			zap.Any("errors_by_kind", rep.ErrorsByKind))
	}
	if err != nil {
		return err
	}
	if failedFiles == len(reports) && failedFiles > 0 {
		return fmt.Errorf("all %d sources failed", failedFiles)
	}
	return nil
}

// buildLookups wires the OpenFIGI and GLEIF clients behind a shared lookup
// cache: Redis when configured, process memory otherwise.
func buildLookups(ctx context.Context, cfg *config.Config, rateMgr *rate.Manager, logg *zap.Logger, checks *[]api.HealthCheck) (enrich.GlobalIDLookup, enrich.EntityLookup, func(), error) {
	closeFn := func() {}

	apiKey := cfg.OpenFIGIAPIKey
	if cfg.SecretsEnabled && apiKey == "" {
		// --- AWS Secrets Manager provider ---
		provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, closeFn, err
		}
		keyCache := secrets.NewCache[string](cfg.SecretsCacheTTL)
		resolver := internalsecrets.NewResolver(logg, cfg.Env, cfg.SecretsNamespace, provider, keyCache, internalsecrets.ParseAPIKey)
		apiKey, err = internalsecrets.APIKey(ctx, resolver, openfigi.ServiceName, "")
		if err != nil {
			logg.Warn("openfigi.api_key_unavailable", zap.Error(err))
		} else {
			logg.Info("openfigi.api_key_resolved", zap.String("key", utils.MaskAPIKey(apiKey)))
		}
	}

	figi := openfigi.NewClient(openfigi.Config{
		BaseURL:  cfg.OpenFIGIBaseURL,
		APIKey:   apiKey,
		RetryMax: cfg.RetryMax,
	}, logg, rateMgr)
	lei := gleif.NewClient(gleif.Config{
		BaseURL:  cfg.GLEIFBaseURL,
		RetryMax: cfg.RetryMax,
	}, logg, rateMgr)

	var lookupCache cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPass,
		})
		rc := cache.NewRedisCache(rdb, cache.RedisOptions{TTL: cfg.LookupCacheTTL}, logg)
		lookupCache = rc
		*checks = append(*checks, api.HealthCheck{Name: "redis", Check: rc.HealthCheck})
		closeFn = func() { _ = rdb.Close() }
	} else {
		lookupCache = cache.NewMemoryCache(cfg.LookupCacheTTL)
	}

	return enrich.NewCachedGlobalIDLookup(figi, lookupCache, logg),
		enrich.NewCachedEntityLookup(lei, lookupCache, logg),
		closeFn,
		nil
}
