package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseEventType(t *testing.T) {
	for _, s := range []string{"deposit", "withdrawal", "dispute", "resolve", "chargeback"} {
		typ, err := ParseEventType(s)
		require.NoError(t, err, s)
		assert.Equal(t, EventType(s), typ)
	}

	_, err := ParseEventType("transfer")
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = ParseEventType("")
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr error
	}{
		{
			name:  "deposit with positive amount",
			event: Event{Type: EventTypeDeposit, Client: 1, Tx: 1, Amount: amt("10.5")},
		},
		{
			name:  "amount at the precision cap",
			event: Event{Type: EventTypeWithdrawal, Client: 1, Tx: 2, Amount: amt("0.0001")},
		},
		{
			name:  "dispute without amount",
			event: Event{Type: EventTypeDispute, Client: 1, Tx: 1},
		},
		{
			name: "dispute ignores a stray amount",
			// The amount column may be populated by sloppy producers; the
			// dispute family references the stored deposit amount instead.
			event: Event{Type: EventTypeResolve, Client: 1, Tx: 1, Amount: amt("-99")},
		},
		{
			name:    "deposit without amount",
			event:   Event{Type: EventTypeDeposit, Client: 1, Tx: 1},
			wantErr: ErrMissingAmount,
		},
		{
			name:    "withdrawal with zero amount",
			event:   Event{Type: EventTypeWithdrawal, Client: 1, Tx: 1, Amount: amt("0")},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "deposit with negative amount",
			event:   Event{Type: EventTypeDeposit, Client: 1, Tx: 1, Amount: amt("-0.5")},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "amount beyond four decimal places",
			event:   Event{Type: EventTypeDeposit, Client: 1, Tx: 1, Amount: amt("1.00001")},
			wantErr: ErrAmountPrecision,
		},
		{
			name:    "unknown type",
			event:   Event{Type: "transfer", Client: 1, Tx: 1},
			wantErr: ErrUnknownEventType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.event.Validate()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAccountTotalIsDerived(t *testing.T) {
	acc := NewAccount(3)
	acc.Available = decimal.RequireFromString("-5")
	acc.Held = decimal.RequireFromString("10")

	assert.True(t, acc.Total().Equal(decimal.RequireFromString("5")),
		"total: got %s", acc.Total())

	view := acc.View()
	assert.True(t, view.Total.Equal(view.Available.Add(view.Held)),
		"view total must equal available plus held")
}
