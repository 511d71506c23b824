// cmd/botaniq-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"botaniq/internal/common/config"
	"botaniq/internal/common/logger"
	"botaniq/internal/common/observability"
	"botaniq/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting botaniq server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
		zap.String("plantData", cfg.PlantData.Path),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := server.BuildServices(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("service initialization failed", zap.Error(err))
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			zapLog.Warn("closing upstream clients", zap.Error(err))
		}
	}()

	srv := server.New(cfg.Server, server.NewRouter(svcs, log), log)
	if err := srv.Run(ctx); err != nil {
		zapLog.Error("http server failed", zap.Error(err))
		return
	}

	zapLog.Info("Botaniq server stopped gracefully")
}
