package main

import (
	"context"
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/internal/pricerd"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/config"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
)

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var (
		configPath   string
		grpcAddr     string
		httpAddr     string
		logLevel     string
		logFile      string
		workers      int
		workerBudget int
	)
	flag.StringVar(&configPath, "config", os.Getenv("PRICERD_CONFIG"), "path to config yaml")
	flag.StringVar(&grpcAddr, "grpc-addr", os.Getenv("PRICERD_GRPC_ADDR"), "gRPC listen address")
	flag.StringVar(&httpAddr, "http-addr", os.Getenv("PRICERD_HTTP_ADDR"), "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", os.Getenv("PRICERD_LOG_LEVEL"), "log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", os.Getenv("PRICERD_LOG_FILE"), "write rotated JSON logs to this file")
	flag.IntVar(&workers, "workers", envInt("PRICERD_WORKERS"), "workers per pricing call (0 for GOMAXPROCS)")
	flag.IntVar(&workerBudget, "worker-budget", envInt("PRICERD_WORKER_BUDGET"), "worker slots shared by concurrent calls")
	flag.Parse()

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if grpcAddr != "" {
		cfg.GRPCAddr = grpcAddr
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if workerBudget > 0 {
		cfg.WorkerBudget = int64(workerBudget)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var logCloser io.Closer
	if cfg.LogFile != "" {
		l, closer := logger.NewFile(cfg.LogLevel, logger.FileOptions{Path: cfg.LogFile, MaxBackups: 5, Compress: true})
		logger.SetDefault(l)
		logCloser = closer
	} else {
		logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exporter := metrics.NewExporter()
	pricer := pricerd.NewPricer(cfg, exporter)
	store := pricerd.NewRunStore()
	executor := pricerd.NewRunExecutor(store, pricer, exporter)
	executor.SetNotifier(pricerd.NewNotifier())

	// TODO: configure gRPC transport security (TLS, authentication) before
	// exposing this service outside a trusted network.
	grpcServer := grpc.NewServer()
	pricerd.RegisterPricingServer(grpcServer, pricerd.NewPricingGRPCServer(store, executor, pricer))

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", cfg.GRPCAddr, "error", err)
		stop()
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           pricerd.NewHTTPServer(store, executor, pricer, exporter).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Synchronous /v1/price calls run for as long as the simulation does.
		WriteTimeout:   5 * time.Minute,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr,
			"workers", cfg.Workers, "worker_budget", pricer.Dispatcher().Budget())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if err := executor.Shutdown(shutdownCtx); err != nil {
		logger.Warn("runs still active at shutdown", "error", err)
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
}
