package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payments-engine/internal/domain"
)

func TestDepositLedgerRecordAndGet(t *testing.T) {
	ledger := NewDepositLedger()

	assert.False(t, ledger.Contains(1))

	ledger.Record(&domain.DepositEntry{
		Tx:     1,
		Client: 9,
		Amount: decimal.RequireFromString("10.0001"),
		State:  domain.DisputeStateSettled,
	})

	require.True(t, ledger.Contains(1))
	assert.Equal(t, 1, ledger.Len())

	entry, ok := ledger.Get(1)
	require.True(t, ok)
	assert.Equal(t, domain.ClientID(9), entry.Client)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("10.0001")),
		"amount: got %s", entry.Amount)
	assert.Equal(t, domain.DisputeStateSettled, entry.State)
}

func TestDepositLedgerStateMutationSticks(t *testing.T) {
	ledger := NewDepositLedger()
	ledger.Record(&domain.DepositEntry{Tx: 2, Client: 1, Amount: decimal.NewFromInt(5), State: domain.DisputeStateSettled})

	entry, _ := ledger.Get(2)
	entry.State = domain.DisputeStateDisputed

	again, _ := ledger.Get(2)
	assert.Equal(t, domain.DisputeStateDisputed, again.State)
}

func TestDepositLedgerUnknownTx(t *testing.T) {
	ledger := NewDepositLedger()

	_, ok := ledger.Get(404)
	assert.False(t, ok)
	assert.False(t, ledger.Contains(404))
	assert.Equal(t, 0, ledger.Len())
}
