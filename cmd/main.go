package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/parley/internal/adapters/http/api"
	"github.com/okian/parley/internal/adapters/http/swagger"
	"github.com/okian/parley/internal/adapters/repository"
	app "github.com/okian/parley/internal/app"
	"github.com/okian/parley/internal/config"
	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "parley exited", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the store, service and HTTP server and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	svc := newService(cfg, repository.Instrument(store), log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		svc.Stop(stopCtx)
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore selects the document store backend named by the config.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreMongo:
		prefix := cfg.MongoCollectionPrefix
		s, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase,
			repository.WithCollections(prefix+"events", prefix+"results", prefix+"surveys", prefix+"cases"),
			repository.WithConnectTimeout(time.Duration(cfg.MongoConnectTimeoutMS)*time.Millisecond),
		)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return s, nil
	default:
		var opts []repository.Option
		if cfg.FixturePath != "" {
			f, err := repository.LoadFixture(cfg.FixturePath)
			if err != nil {
				return nil, fmt.Errorf("open memory store: %w", err)
			}
			opts = append(opts, repository.WithFixture(f))
		}
		s, err := repository.NewMemoryStore(opts...)
		if err != nil {
			return nil, fmt.Errorf("open memory store: %w", err)
		}
		return s, nil
	}
}

// newService maps the configuration onto service options.
func newService(cfg *config.Config, store repository.Store, log logger.Logger) *app.Service {
	return app.New(
		app.WithStore(store),
		app.WithLogger(log.Named("service")),
		app.WithFetchTimeout(time.Duration(cfg.FetchTimeoutMS)*time.Millisecond),
		app.WithRangeCacheSize(cfg.RangeCacheSize),
		app.WithRangeLimits(cfg.RangeMaxAssignments, cfg.RangeSamples),
		app.WithScoreScale(cfg.ScoreScale),
		app.WithWeights(cfg.SubWeight, cfg.RelWeight),
		app.WithAITeamPrefix(cfg.AITeamPrefix),
	)
}

// newRouter mounts the business API and its docs.
func newRouter(svc *app.Service) http.Handler {
	r := api.NewServer(svc, svc).Router()
	swagger.Register(r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if cached, ok := stats["rangesCached"].(int64); ok {
		metrics.UpdateRangeCacheSize(int(cached))
	}
}
