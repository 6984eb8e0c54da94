package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"payments-engine/internal/config"
	hrest "payments-engine/internal/handler/rest"
	"payments-engine/internal/handler/ws"
	"payments-engine/internal/pub"
	"payments-engine/internal/repository"
	"payments-engine/internal/service"
	"payments-engine/internal/usecase"
	"payments-engine/pkg/utils"
)

// Serve runs the HTTP intake with the websocket feed and metrics.
func Serve(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	return run(ctx, cfg, logger, false)
}

// Consume runs the Kafka intake alongside the same HTTP surface.
func Consume(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	return run(ctx, cfg, logger, true)
}

func run(ctx context.Context, cfg config.AppConfig, logger *zap.Logger, withKafka bool) error {
	runID := utils.NewRunID()
	logger = logger.With(zap.String("run_id", runID))

	// --- Engine state ---
	book := repository.NewAccountBook()
	ledger := repository.NewDepositLedger()
	proc := usecase.NewProcessor(book, ledger)

	// --- Websocket hub ---
	hub := ws.NewHub(logger)

	// --- Notifiers ---
	notifiers := []usecase.Notifier{hub}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       0,
		})
		defer rdb.Close()
		notifiers = append(notifiers, pub.NewAccountEventPublisher(rdb, runID, logger))
	}
	if cfg.KafkaDeadLetterTopic != "" && len(cfg.KafkaBrokers) > 0 {
		dlq := pub.NewDeadLetterPublisher(cfg.KafkaBrokers, cfg.KafkaDeadLetterTopic, runID, logger)
		defer dlq.Close()
		notifiers = append(notifiers, dlq)
	}

	// --- Sequencer ---
	seq := usecase.NewSequencer(proc, book, cfg.QueueSize, logger, notifiers...)
	go hub.Run(ctx)
	go seq.Run(ctx)

	// --- Kafka intake ---
	if withKafka {
		consumer := service.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, seq, logger)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("kafka consumer stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP server ---
	handler := hrest.NewEngineRestHandler(seq, hub, logger)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// --- Graceful shutdown ---
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown did not finish cleanly", zap.Error(err))
	}

	select {
	case <-seq.Done():
	case <-shutdownCtx.Done():
		logger.Warn("sequencer did not drain before the shutdown deadline")
	}

	logger.Info("engine stopped")
	return nil
}
