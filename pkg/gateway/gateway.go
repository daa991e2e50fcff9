package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/mtc-analytics/patlens/pkg/api/v1"
	"github.com/mtc-analytics/patlens/pkg/assist"
	"github.com/mtc-analytics/patlens/pkg/catalog"
	"github.com/mtc-analytics/patlens/pkg/clients"
	"github.com/mtc-analytics/patlens/pkg/common"
	"github.com/mtc-analytics/patlens/pkg/export"
	"github.com/mtc-analytics/patlens/pkg/runner"
	"github.com/mtc-analytics/patlens/pkg/types"
)

type Gateway struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient
	httpServer  *http.Server
	echo        *echo.Echo
	ctx         context.Context
	cancelFunc  context.CancelFunc

	baseRouteGroup *echo.Group
	rootRouteGroup *echo.Group

	bqClient *clients.BigQueryClient
	catalog  *catalog.Catalog
	runner   *runner.Runner
	drafter  *assist.Drafter
	archive  *export.Archive
}

func NewGateway() (*Gateway, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()

	// Setup logging
	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	var redisClient *common.RedisClient
	if config.Cache.Backend == types.CacheBackendRedis {
		redisClient, err = common.NewRedisClient(config.Database.Redis, common.WithClientName("PatlensGateway"))
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	gateway := &Gateway{
		Config:      config,
		RedisClient: redisClient,
		ctx:         ctx,
		cancelFunc:  cancel,
	}

	return gateway, nil
}

func (g *Gateway) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Configure logging middleware
	if g.Config.Gateway.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	// CORS
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: g.Config.Gateway.HTTP.CORS.AllowedOrigins,
		AllowHeaders: g.Config.Gateway.HTTP.CORS.AllowedHeaders,
		AllowMethods: g.Config.Gateway.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	g.echo = e
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port),
		Handler: e,
	}

	g.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)
	g.rootRouteGroup = e.Group(apiv1.HttpServerRootRoute)

	// Health check works without Redis when the memory cache is configured
	apiv1.NewHealthGroup(g.baseRouteGroup.Group("/health"), g.RedisClient)

	return nil
}

func (g *Gateway) registerServices() error {
	bqClient, err := clients.NewBigQueryClient(g.ctx, g.Config.BigQuery)
	if err != nil {
		return fmt.Errorf("failed to create bigquery client: %w", err)
	}
	g.bqClient = bqClient

	// Catalog with optional contribution dry-run validation
	var catalogOpts []catalog.Option
	if g.Config.BigQuery.DryRunContributions {
		catalogOpts = append(catalogOpts, catalog.WithDryRunner(bqClient))
	}
	g.catalog = catalog.New(catalogOpts...)
	if err := catalog.LoadBuiltins(g.catalog); err != nil {
		return fmt.Errorf("failed to load builtin queries: %w", err)
	}

	// Result cache - redis when configured, process-local memory otherwise
	var cache runner.ResultCache
	if g.RedisClient != nil {
		cache = runner.NewRedisCache(g.RedisClient, g.Config.Cache.TTL)
		log.Info().Msg("result cache registered (redis backend)")
	} else {
		cache = runner.NewMemoryCache(g.Config.Cache.TTL, g.Config.Cache.MaxEntries)
		log.Info().Msg("result cache registered (memory backend)")
	}
	g.runner = runner.New(g.catalog, cache, bqClient)

	apiv1.NewQueriesGroup(g.baseRouteGroup.Group("/queries"), g.catalog, g.runner, g.archive)
	apiv1.NewMetaGroup(g.baseRouteGroup.Group("/meta"))

	// Assist drafting service
	if g.Config.Assist.Enabled {
		if err := g.initAssist(); err != nil {
			return fmt.Errorf("failed to initialize assist: %w", err)
		}
	}
	apiv1.NewAssistGroup(g.baseRouteGroup.Group("/assist"), g.drafter)

	log.Info().Int("queries", g.catalog.Len()).Msg("catalog service registered")
	return nil
}

// initExport creates the S3 export archive when a bucket is configured.
// Archive failures never block startup; exports just stay disabled.
func (g *Gateway) initExport() {
	if g.Config.Export.Bucket == "" {
		return
	}

	store, err := clients.NewStorageClient(g.ctx, g.Config.Export)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create export storage client, exports disabled")
		return
	}
	if err := store.EnsureBucket(g.ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure export bucket, exports disabled")
		return
	}

	g.archive = export.NewArchive(store)
	log.Info().Str("bucket", g.Config.Export.Bucket).Msg("export archive registered")
}

func (g *Gateway) initAssist() error {
	opts := []openai.Option{
		openai.WithToken(g.Config.Assist.APIKey),
		openai.WithModel(g.Config.Assist.Model),
	}
	if g.Config.Assist.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(g.Config.Assist.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return err
	}

	g.drafter = assist.NewDrafter(model, g.Config.Assist.MaxConcurrent, g.Config.Assist.Timeout)
	log.Info().Str("model", g.Config.Assist.Model).Msg("assist service registered")
	return nil
}

// StartAsync starts the gateway server without blocking.
// Use this when embedding the gateway in another process (e.g., CLI).
func (g *Gateway) StartAsync() error {
	g.initExport()

	err := g.initHTTP()
	if err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	err = g.registerServices()
	if err != nil {
		return fmt.Errorf("failed to register services: %w", err)
	}

	// Start HTTP server
	go func() {
		addr := fmt.Sprintf("%s:%d", g.Config.Gateway.HTTP.Host, g.Config.Gateway.HTTP.Port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			log.Error().Err(err).Msg("failed to listen on http")
			return
		}

		if err := g.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", g.Config.Gateway.HTTP.Host).
		Int("port", g.Config.Gateway.HTTP.Port).
		Msg("gateway http server running")

	return nil
}

func (g *Gateway) Start() error {
	if err := g.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal

	log.Info().Msg("termination signal received. shutting down...")
	g.shutdown()

	return nil
}

// Shutdown gracefully shuts down the gateway (exported for external use)
func (g *Gateway) Shutdown() {
	g.shutdown()
}

// Catalog returns the loaded catalog, for embedding callers.
func (g *Gateway) Catalog() *catalog.Catalog {
	return g.catalog
}

// Runner returns the execution runner, for embedding callers.
func (g *Gateway) Runner() *runner.Runner {
	return g.runner
}

// shutdown gracefully shuts down the gateway
func (g *Gateway) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), g.Config.Gateway.ShutdownTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	// Stop HTTP server
	eg.Go(func() error {
		return g.httpServer.Shutdown(ctx)
	})

	// Close BigQuery client
	if g.bqClient != nil {
		eg.Go(func() error {
			return g.bqClient.Close()
		})
	}

	g.cancelFunc()

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to shutdown gateway gracefully")
	}

	log.Info().Msg("gateway stopped")
}
