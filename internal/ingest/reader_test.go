package ingest

import (
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
)

func readAll(t *testing.T, r *Reader) []domain.Event {
	t.Helper()

	var events []domain.Event
	for {
		ev, err := r.Read()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestReaderParsesWhitespaceHeavyInput(t *testing.T) {
	input := `type, client, tx, amount
deposit,1,1,1.0
deposit, 2, 2, 2.0
deposit,     1, 3,                    2.0
withdrawal, 1, 4,    1.5
withdrawal, 2, 5, 3.0
chargeback, 1, 1,
dispute, 2, 2,
resolve, 2, 2,
`
	events := readAll(t, NewReader(strings.NewReader(input), zap.NewNop()))
	require.Len(t, events, 8)

	assert.Equal(t, domain.EventTypeDeposit, events[0].Type)
	assert.Equal(t, domain.ClientID(1), events[0].Client)
	assert.Equal(t, domain.TxID(1), events[0].Tx)
	require.NotNil(t, events[0].Amount)
	assert.True(t, events[0].Amount.Equal(decimal.RequireFromString("1.0")),
		"amount: got %s", events[0].Amount)

	assert.Equal(t, domain.EventTypeWithdrawal, events[3].Type)
	require.NotNil(t, events[3].Amount)
	assert.True(t, events[3].Amount.Equal(decimal.RequireFromString("1.5")),
		"amount: got %s", events[3].Amount)

	// Dispute-family rows carry no amount.
	assert.Equal(t, domain.EventTypeChargeback, events[5].Type)
	assert.Nil(t, events[5].Amount)
	assert.Equal(t, domain.EventTypeDispute, events[6].Type)
	assert.Equal(t, domain.ClientID(2), events[6].Client)
	assert.Nil(t, events[6].Amount)
}

func TestReaderToleratesMissingAmountField(t *testing.T) {
	// Rows may omit the trailing amount column entirely.
	input := "type,client,tx,amount\ndeposit,1,1,5\ndispute,1,1\nresolve,1,1\n"

	events := readAll(t, NewReader(strings.NewReader(input), zap.NewNop()))

	require.Len(t, events, 3)
	assert.Nil(t, events[1].Amount)
	assert.Nil(t, events[2].Amount)
}

func TestReaderToleratesAnyColumnOrder(t *testing.T) {
	input := "client, type, amount, tx\n7, deposit, 3.14, 21\n"

	events := readAll(t, NewReader(strings.NewReader(input), zap.NewNop()))

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeDeposit, events[0].Type)
	assert.Equal(t, domain.ClientID(7), events[0].Client)
	assert.Equal(t, domain.TxID(21), events[0].Tx)
	require.NotNil(t, events[0].Amount)
	assert.True(t, events[0].Amount.Equal(decimal.RequireFromString("3.14")),
		"amount: got %s", events[0].Amount)
}

func TestReaderSkipsUnparsableRows(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,10
transfer,1,2,5
deposit,abc,3,5
deposit,1,4,ten
deposit,1,5,0.00001
deposit,70000,6,5
deposit,2,7,3.5
`
	r := NewReader(strings.NewReader(input), zap.NewNop())
	events := readAll(t, r)

	require.Len(t, events, 2, "only the well-formed rows survive")
	assert.Equal(t, domain.TxID(1), events[0].Tx)
	assert.Equal(t, domain.TxID(7), events[1].Tx)
	assert.Equal(t, 5, r.Skipped())
}

func TestReaderHeaderValidation(t *testing.T) {
	t.Run("unknown column is fatal", func(t *testing.T) {
		r := NewReader(strings.NewReader("type,client,tx,amount,memo\n"), zap.NewNop())

		_, err := r.Read()
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("missing required column is fatal", func(t *testing.T) {
		r := NewReader(strings.NewReader("type,client,amount\ndeposit,1,5\n"), zap.NewNop())

		_, err := r.Read()
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("empty input is just EOF", func(t *testing.T) {
		r := NewReader(strings.NewReader(""), zap.NewNop())

		_, err := r.Read()
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestReaderNegativeAmountPassesThrough(t *testing.T) {
	// Negative amounts parse fine here; rejecting them is the processor's
	// call, which answers with an invalid_amount outcome.
	input := "type,client,tx,amount\ndeposit,1,1,-5.0\n"

	events := readAll(t, NewReader(strings.NewReader(input), zap.NewNop()))

	require.Len(t, events, 1)
	require.NotNil(t, events[0].Amount)
	assert.True(t, events[0].Amount.IsNegative())
}
