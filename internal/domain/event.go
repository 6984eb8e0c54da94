package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account. Assigned by the event source.
type ClientID uint16

// TxID identifies a transaction event. Assigned by the event source,
// never generated internally.
type TxID uint32

// EventType represents the kind of a transaction event
type EventType string

const (
	EventTypeDeposit    EventType = "deposit"
	EventTypeWithdrawal EventType = "withdrawal"
	EventTypeDispute    EventType = "dispute"
	EventTypeResolve    EventType = "resolve"
	EventTypeChargeback EventType = "chargeback"
)

var (
	ErrUnknownEventType  = errors.New("unknown event type")
	ErrMissingAmount     = errors.New("amount is required")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount exceeds four decimal places")
)

// ParseEventType maps a wire string onto an EventType.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventTypeDeposit, EventTypeWithdrawal, EventTypeDispute, EventTypeResolve, EventTypeChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, s)
	}
}

// MovesFunds reports whether the event type carries its own amount.
// Dispute, resolve and chargeback reference the amount of the deposit
// they point at instead.
func (t EventType) MovesFunds() bool {
	return t == EventTypeDeposit || t == EventTypeWithdrawal
}

// Event is a single inbound transaction event. Amount is nil for the
// dispute family of events.
type Event struct {
	Type   EventType        `json:"type"`
	Client ClientID         `json:"client"`
	Tx     TxID             `json:"tx"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// Validate checks the event shape at an ingest boundary. The processor
// re-checks amount semantics itself, so core behavior does not depend on
// callers validating first.
func (e *Event) Validate() error {
	if _, err := ParseEventType(string(e.Type)); err != nil {
		return err
	}
	if e.Type.MovesFunds() {
		if e.Amount == nil {
			return fmt.Errorf("%s tx %d: %w", e.Type, e.Tx, ErrMissingAmount)
		}
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%s tx %d: %w", e.Type, e.Tx, ErrNonPositiveAmount)
		}
		if e.Amount.Exponent() < -4 {
			return fmt.Errorf("%s tx %d: %w", e.Type, e.Tx, ErrAmountPrecision)
		}
	}
	return nil
}
