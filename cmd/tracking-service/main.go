package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
	"deliverytrack/internal/tracking/bootstrap"
)

func main() {
	// .env опционален (локальная разработка)
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.NewLoggerWithOptions("tracking-service", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_DIR"))
	if err != nil {
		panic(err)
	}
	defer log.Close()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.Run(ctx, cfg, log)
}
