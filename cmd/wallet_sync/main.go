package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet_sync/internal/app/service"
	"wallet_sync/internal/infrastructure/configloader"
	"wallet_sync/internal/infrastructure/httpclient"
	clientprovider "wallet_sync/internal/infrastructure/network/client"
	networkdefinition "wallet_sync/internal/infrastructure/network/definition"
	"wallet_sync/internal/infrastructure/restapi"
	"wallet_sync/internal/pkg/logger"
	"wallet_sync/internal/pkg/metrics"
	"wallet_sync/internal/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogzap "github.com/samber/slog-zap/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap logger for the earliest config loading; the zap logger below
	// needs the loaded config first.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	cfgPath := utils.GetEnv("WALLET_SYNC_CONFIG_PATH", "config/config.yaml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route the global slog logger through zap via samber/slog-zap.
	slogLevel := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	slogHandler := slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler()
	slog.SetDefault(slog.New(slogHandler))

	logger.Info("Wallet sync service starting...", "configPath", cfgPath)
	appLogger := logger.NewSlogAdapter()

	metrics.MustRegisterMetrics()

	catalog, err := networkdefinition.NewNetworkCatalog(cfg, appLogger)
	if err != nil {
		logger.Fatal("Failed to build network catalog", "error", err)
	}

	dialer := clientprovider.NewEVMDialer(
		time.Duration(cfg.RPCClient.ConnectionTimeoutMs)*time.Millisecond,
		time.Duration(cfg.RPCClient.CallTimeoutMs)*time.Millisecond,
		cfg.RPCClient.RateLimit,
		cfg.RPCClient.BurstLimit,
		zapLogger,
	)
	deriver := clientprovider.NewEVMAccountDeriver()

	store := service.NewWalletStateStore()
	defer store.Close()

	connManager := service.NewConnectionManager(store, dialer, deriver, catalog, cfg, appLogger)
	fetcher := service.NewMultiNetworkBalanceFetcher(catalog, dialer, deriver, store, cfg, appLogger)
	walletManager := service.NewWalletManager(store, connManager, fetcher, deriver, catalog, appLogger)

	// Startup triggers: initialize the primary connection, then run the first
	// multi-network fetch. A failed initialize is recorded into the state's
	// LastError and recovered by the reinitialize endpoint.
	go func() {
		if err := connManager.Initialize(ctx); err != nil {
			logger.Error("Initial connection setup failed", "error", err)
		}
		fetcher.FetchAll(ctx)
	}()

	if cfg.RefreshIntervalS > 0 {
		interval := time.Duration(cfg.RefreshIntervalS) * time.Second
		logger.Info("Periodic balance refresh enabled", "interval", interval.String())
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					walletManager.Refresh(ctx)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	prober := httpclient.NewRPCProber(time.Duration(cfg.RPCClient.CallTimeoutMs)*time.Millisecond, zapLogger)
	walletHandler := restapi.NewWalletHandler(walletManager, catalog, prober, appLogger)

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	restapi.RegisterWalletRoutes(router, walletHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pprof endpoints (for debugging performance issues)
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	cancel()
	logger.Info("Wallet sync service stopped.")
}
