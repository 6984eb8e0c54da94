package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payments-engine/internal/domain"
)

func TestAccountBookLazyCreation(t *testing.T) {
	book := NewAccountBook()

	_, ok := book.Get(1)
	assert.False(t, ok, "account must not exist before first reference")

	acc := book.GetOrCreate(1)
	require.NotNil(t, acc)
	assert.Equal(t, domain.ClientID(1), acc.Client)
	assert.True(t, acc.Available.IsZero(), "available: got %s", acc.Available)
	assert.True(t, acc.Held.IsZero(), "held: got %s", acc.Held)
	assert.False(t, acc.Locked)

	// Same pointer on every later reference.
	assert.Same(t, acc, book.GetOrCreate(1))
	assert.Equal(t, 1, book.Len())
}

func TestAccountBookSnapshotOrder(t *testing.T) {
	book := NewAccountBook()

	for _, client := range []domain.ClientID{5, 1, 9, 1, 5, 3} {
		book.GetOrCreate(client)
	}

	views := book.Snapshot()
	require.Len(t, views, 4)

	got := make([]domain.ClientID, 0, len(views))
	for _, v := range views {
		got = append(got, v.Client)
	}
	assert.Equal(t, []domain.ClientID{5, 1, 9, 3}, got, "snapshot follows first-touch order")
}

func TestAccountBookSnapshotDerivesTotal(t *testing.T) {
	book := NewAccountBook()

	acc := book.GetOrCreate(7)
	acc.Available = decimal.RequireFromString("1.5")
	acc.Held = decimal.RequireFromString("2.25")

	views := book.Snapshot()
	require.Len(t, views, 1)
	assert.True(t, views[0].Total.Equal(decimal.RequireFromString("3.75")),
		"total: got %s", views[0].Total)
}
