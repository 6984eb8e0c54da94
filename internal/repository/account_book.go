package repository

import "payments-engine/internal/domain"

// AccountBook is the in-memory store of client accounts. Accounts are
// created lazily on first reference and never removed during a run. The
// book is not safe for concurrent use; callers serialize access, see
// usecase.Sequencer.
type AccountBook struct {
	accounts map[domain.ClientID]*domain.Account
	order    []domain.ClientID // first-touch order, drives snapshot output
}

// NewAccountBook returns an empty book.
func NewAccountBook() *AccountBook {
	return &AccountBook{accounts: make(map[domain.ClientID]*domain.Account)}
}

// GetOrCreate returns the account for the client, creating it unlocked
// with zero balances on first reference.
func (b *AccountBook) GetOrCreate(client domain.ClientID) *domain.Account {
	if acc, ok := b.accounts[client]; ok {
		return acc
	}
	acc := domain.NewAccount(client)
	b.accounts[client] = acc
	b.order = append(b.order, client)
	return acc
}

// Get returns the account for the client if one exists.
func (b *AccountBook) Get(client domain.ClientID) (*domain.Account, bool) {
	acc, ok := b.accounts[client]
	return acc, ok
}

// Len returns the number of accounts created so far.
func (b *AccountBook) Len() int { return len(b.accounts) }

// Snapshot renders every known account in first-touch order.
func (b *AccountBook) Snapshot() []domain.AccountView {
	views := make([]domain.AccountView, 0, len(b.order))
	for _, client := range b.order {
		views = append(views, b.accounts[client].View())
	}
	return views
}
