package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fjod/go_marketplace/internal/analytics"
	"github.com/fjod/go_marketplace/internal/cache"
	"github.com/fjod/go_marketplace/internal/cart"
	"github.com/fjod/go_marketplace/internal/catalog"
	"github.com/fjod/go_marketplace/internal/checkout"
	"github.com/fjod/go_marketplace/internal/config"
	h "github.com/fjod/go_marketplace/internal/http"
	"github.com/fjod/go_marketplace/internal/logger"
	"github.com/fjod/go_marketplace/internal/publisher"
	"github.com/fjod/go_marketplace/internal/repository"
	"github.com/fjod/go_marketplace/internal/repository/memory"
	"github.com/fjod/go_marketplace/internal/reviews"
	"github.com/fjod/go_marketplace/internal/vendor"
)

func main() {
	configPath := flag.String("config", os.Getenv("MARKETPLACE_CONFIG"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("marketplace stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(cfg.Database, log)
	if err != nil {
		return err
	}
	defer store.Close()

	catalogCache, closeCache, err := openCache(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeCache()

	router := h.NewRouter(h.Services{
		Catalog:   catalog.NewService(store, catalogCache),
		Cart:      cart.NewService(store),
		Checkout:  checkout.NewService(store),
		Reviews:   reviews.NewService(store, catalogCache),
		Vendor:    vendor.NewService(store, catalogCache),
		Analytics: analytics.NewService(store),
	}, cfg.HTTP.RequestTimeout)

	handler := otelhttp.NewHandler(router, "marketplace",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)

	go func() {
		log.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		log.Info("grpc health server starting", "port", cfg.GRPC.Port)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	if len(cfg.Kafka.Brokers) > 0 {
		writer := publisher.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer writer.Close()

		poller := publisher.NewOutboxPoller(store, writer, cfg.Outbox.Interval, cfg.Outbox.BatchSize)
		go poller.Run(ctx)
		log.Info("outbox poller started", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		log.Info("kafka brokers not configured, outbox events stay unpublished")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case runErr = <-errCh:
	}

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	log.Info("marketplace stopped")
	return runErr
}

func openStore(cfg config.DatabaseConfig, log *slog.Logger) (repository.Store, error) {
	if cfg.Driver == "memory" {
		store := memory.NewStore()
		store.SeedDemoData()
		log.Info("using in-memory store with demo data")
		return store, nil
	}

	creds := &repository.Credentials{
		Host:              cfg.Host,
		Port:              cfg.Port,
		User:              cfg.User,
		Password:          cfg.Password,
		DBName:            cfg.Name,
		MigrationsDirPath: cfg.MigrationsPath,
		MaxOpenConns:      cfg.MaxOpenConns,
		MaxIdleConns:      cfg.MaxIdleConns,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := repo.RunMigrations(creds); err != nil {
		repo.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database ready", "host", cfg.Host, "name", cfg.Name)
	return repo, nil
}

func openCache(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (cache.CatalogCache, func(), error) {
	if cfg.Addr == "" {
		log.Info("redis not configured, catalog cache disabled")
		return cache.Nop{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	log.Info("redis ping succeeded", "addr", cfg.Addr)
	return cache.NewRedisCache(client), func() { client.Close() }, nil
}
