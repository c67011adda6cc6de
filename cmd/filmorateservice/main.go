package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	httpAPI "filmorate-service/internal/api"
	"filmorate-service/internal/config"
	grpcServer "filmorate-service/internal/grpc"
	"filmorate-service/internal/service"
	"filmorate-service/internal/store"
)

// openStores выбирает бэкенд хранилища по конфигурации.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Info("Using in-memory storage, data will be lost on restart")
		return store.NewMemoryStores(logger), nil
	}

	if cfg.DatabaseDefault {
		logger.Warn("DATABASE_URL environment variable not set, using default connection string. Ensure this is correct for your environment.")
	}
	logger.Info("Attempting to connect to Filmorate database",
		slog.String("driver", cfg.StorageDriver), slog.String("dbURL_used", cfg.RedactedDatabaseURL()))

	db, err := store.Connect(ctx, store.DBConfig{
		Driver:          cfg.StorageDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	stores, err := store.NewDBStores(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return stores, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Инициализация хранилища ---
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := openStores(initCtx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.Error("Filmorate failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		logger.Info("Closing Filmorate storage...")
		if err := stores.Close(); err != nil {
			logger.Error("Failed to close Filmorate storage", slog.String("error", err.Error()))
		}
	}()

	validate := service.NewValidator()
	films := service.NewFilmService(stores, validate, logger)
	users := service.NewUserService(stores, validate, logger)
	catalog := service.NewCatalogService(stores)

	// --- Настройка и запуск gRPC сервера ---
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		logger.Error("Failed to listen for Filmorate gRPC", slog.String("port", cfg.GRPCPort), slog.String("error", err.Error()))
		os.Exit(1)
	}
	grpcSrv := grpc.NewServer()
	grpcServer.NewServer(films, users, logger).Register(grpcSrv)
	reflection.Register(grpcSrv)

	go func() {
		logger.Info("Filmorate gRPC server starting", slog.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("Filmorate gRPC server Serve() failed", slog.String("error", err.Error()))
		}
	}()

	// --- Настройка и запуск HTTP сервера ---
	httpRouter := httpAPI.NewRouter(httpAPI.Handlers{
		Films:   httpAPI.NewFilmHandler(films, logger),
		Users:   httpAPI.NewUserHandler(users, logger),
		Catalog: httpAPI.NewCatalogHandler(catalog, stores.Ping, logger),
	}, logger)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Filmorate HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Filmorate HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Filmorate shutting down...")

	ctxHttp, cancelHttp := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelHttp()
	if err := httpSrv.Shutdown(ctxHttp); err != nil {
		logger.Error("Filmorate HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Filmorate HTTP Server gracefully stopped.")
	}

	grpcSrv.GracefulStop()
	logger.Info("Filmorate gRPC server gracefully stopped.")
}
