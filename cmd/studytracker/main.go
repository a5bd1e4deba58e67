package main

import (
	"context"
	"os"

	"studytracker/internal/backend"
	"studytracker/internal/cli"
	apphttp "studytracker/internal/http"
	"studytracker/internal/log"
	"studytracker/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			log.FieldBackend, cfg.StorageBackend,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeStorage)
		os.Exit(1)
	}

	opts := []services.Option{services.WithLogger(logger)}
	if result.Publisher != nil {
		opts = append(opts, services.WithPublisher(result.Publisher))
	}
	tracker := services.Open(ctx, result.Store, opts...)

	srv := apphttp.NewServer(cfg.Addr(), apphttp.NewRouter(tracker, logger), logger)

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", log.FieldError, err.Error())
		}
		if err := tracker.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to save study hours on exit",
				log.NewFields().WithError(err).WithErrorType(log.ErrorTypeStorage).WithOperation(log.OpShutdown).ToSlice()...)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.ErrorContext(ctx, "Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting studytracker server",
		"port", cfg.Port,
		log.FieldBackend, cfg.StorageBackend,
		"notifications", result.Publisher != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		if saveErr := tracker.Shutdown(ctx); saveErr != nil {
			logger.Error("Failed to save study hours on exit", log.FieldError, saveErr.Error())
		}
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
