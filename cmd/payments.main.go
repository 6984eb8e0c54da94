package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"payments-engine/internal/config"
	"payments-engine/internal/server"
	"payments-engine/internal/service"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("Payments engine: No .env file found, relying on system env vars")
	}

	args := os.Args[1:]
	if len(args) != 1 {
		log.Fatalln("usage: payments <transactions.csv> | payments serve | payments consume")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	switch args[0] {
	case "serve", "consume":
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		run := server.Serve
		if args[0] == "consume" {
			run = server.Consume
		}
		if err := run(ctx, cfg, logger); err != nil {
			logger.Fatal("engine failed", zap.Error(err))
		}

	default:
		// Batch mode: replay the file, snapshot to stdout, logs to stderr.
		if err := service.RunBatch(args[0], os.Stdout, logger); err != nil {
			logger.Fatal("replay failed", zap.Error(err))
		}
	}
}
