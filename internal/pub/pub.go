package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
)

const (
	AccountEventsChannel = "engine:accounts:updates"
)

// AccountEventPublisher fans account state changes out over Redis pub/sub
// so downstream consumers (dashboards, risk tooling) can follow the run
// live. Publish failures are logged and never fed back into processing.
type AccountEventPublisher struct {
	rdb    *redis.Client
	runID  string
	logger *zap.Logger
}

func NewAccountEventPublisher(rdb *redis.Client, runID string, logger *zap.Logger) *AccountEventPublisher {
	return &AccountEventPublisher{rdb: rdb, runID: runID, logger: logger}
}

type AccountEvent struct {
	EventType string              `json:"event_type"` // account.updated, event.rejected
	RunID     string              `json:"run_id"`
	TxType    domain.EventType    `json:"tx_type"`
	Client    domain.ClientID     `json:"client"`
	Tx        domain.TxID         `json:"tx"`
	Reason    domain.Reason       `json:"reason,omitempty"`
	Account   *domain.AccountView `json:"account,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// PublishAccountEvent publishes one event to the account updates channel.
func (p *AccountEventPublisher) PublishAccountEvent(ctx context.Context, event *AccountEvent) error {
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.rdb.Publish(ctx, AccountEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// EventApplied publishes the refreshed account view after an applied event.
func (p *AccountEventPublisher) EventApplied(ctx context.Context, ev domain.Event, view domain.AccountView) {
	err := p.PublishAccountEvent(ctx, &AccountEvent{
		EventType: "account.updated",
		RunID:     p.runID,
		TxType:    ev.Type,
		Client:    ev.Client,
		Tx:        ev.Tx,
		Account:   &view,
	})
	if err != nil {
		p.logger.Warn("account update publish failed",
			zap.Uint16("client", uint16(ev.Client)),
			zap.Error(err),
		)
	}
}

// EventRejected publishes the rejection so subscribers see refused events
// as well as applied ones.
func (p *AccountEventPublisher) EventRejected(ctx context.Context, ev domain.Event, reason domain.Reason) {
	err := p.PublishAccountEvent(ctx, &AccountEvent{
		EventType: "event.rejected",
		RunID:     p.runID,
		TxType:    ev.Type,
		Client:    ev.Client,
		Tx:        ev.Tx,
		Reason:    reason,
	})
	if err != nil {
		p.logger.Warn("rejection publish failed",
			zap.Uint32("tx", uint32(ev.Tx)),
			zap.Error(err),
		)
	}
}
