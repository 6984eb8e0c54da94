package pub

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
	"payments-engine/internal/metrics"
)

// DeadLetterPublisher forwards rejected events to a Kafka dead-letter
// topic with the rejection reason attached, so operators can audit and
// replay refused traffic. Applied events are ignored.
type DeadLetterPublisher struct {
	writer *kafka.Writer
	runID  string
	logger *zap.Logger
}

func NewDeadLetterPublisher(brokers []string, topic, runID string, logger *zap.Logger) *DeadLetterPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return &DeadLetterPublisher{writer: writer, runID: runID, logger: logger}
}

type DeadLetter struct {
	RunID     string        `json:"run_id"`
	Event     domain.Event  `json:"event"`
	Reason    domain.Reason `json:"reason"`
	Timestamp time.Time     `json:"timestamp"`
}

// EventApplied satisfies usecase.Notifier; applied events are not dead
// letters.
func (p *DeadLetterPublisher) EventApplied(ctx context.Context, ev domain.Event, view domain.AccountView) {
}

// EventRejected forwards the rejected event to the dead-letter topic.
func (p *DeadLetterPublisher) EventRejected(ctx context.Context, ev domain.Event, reason domain.Reason) {
	letter := DeadLetter{
		RunID:     p.runID,
		Event:     ev,
		Reason:    reason,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(letter)
	if err != nil {
		p.logger.Error("dead letter marshal failed", zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.Tx), 10)),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		metrics.DeadLetterPublishErrors.Inc()
		p.logger.Error("dead letter publish failed",
			zap.Uint32("tx", uint32(ev.Tx)),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
	}
}

// Close flushes and closes the underlying writer.
func (p *DeadLetterPublisher) Close() error {
	return p.writer.Close()
}
