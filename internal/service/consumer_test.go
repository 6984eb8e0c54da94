package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payments-engine/internal/domain"
)

// -----------------------------------------------------------------------
// Message decoding
// -----------------------------------------------------------------------

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	t.Run("valid deposit", func(t *testing.T) {
		t.Parallel()

		ev, err := decodeEvent([]byte(`{"type":"deposit","client":7,"tx":42,"amount":"19.99"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.EventTypeDeposit, ev.Type)
		assert.Equal(t, domain.ClientID(7), ev.Client)
		assert.Equal(t, domain.TxID(42), ev.Tx)
		require.NotNil(t, ev.Amount)
		assert.True(t, ev.Amount.Equal(decimal.RequireFromString("19.99")), "got %s", ev.Amount)
	})

	t.Run("dispute without amount", func(t *testing.T) {
		t.Parallel()

		ev, err := decodeEvent([]byte(`{"type":"dispute","client":7,"tx":42}`))
		require.NoError(t, err)
		assert.Equal(t, domain.EventTypeDispute, ev.Type)
		assert.Nil(t, ev.Amount)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		_, err := decodeEvent([]byte(`{"type":"deposit",`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal event")
	})

	t.Run("fails validation", func(t *testing.T) {
		t.Parallel()

		_, err := decodeEvent([]byte(`{"type":"deposit","client":7,"tx":42,"amount":"-5"}`))
		require.ErrorIs(t, err, domain.ErrNonPositiveAmount)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		_, err := decodeEvent([]byte(`{"type":"transfer","client":7,"tx":42,"amount":"5"}`))
		require.ErrorIs(t, err, domain.ErrUnknownEventType)
	})
}
