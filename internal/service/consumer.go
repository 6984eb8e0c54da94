package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
	"payments-engine/internal/usecase"
)

// Consumer pulls transaction events off a Kafka topic and feeds them to
// the sequencer one at a time. Submit blocks until each event's outcome
// is known, so a partition's ordering carries straight through to the
// processor.
type Consumer struct {
	reader *kafka.Reader
	seq    *usecase.Sequencer
	logger *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, seq *usecase.Sequencer, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &Consumer{reader: reader, seq: seq, logger: logger}
}

// decodeEvent parses and shape-checks one event message.
func decodeEvent(payload []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// Run consumes until ctx is canceled. Undecodable messages are skipped;
// they must never stall the partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer started",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
	)

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("kafka read error", zap.Error(err))
			continue
		}

		ev, err := decodeEvent(m.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable event message",
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			continue
		}

		if _, err := c.seq.Submit(ctx, ev); err != nil {
			if errors.Is(err, usecase.ErrSequencerClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("event submission failed", zap.Error(err))
		}
	}
}

// Close releases the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
