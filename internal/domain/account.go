package domain

import "github.com/shopspring/decimal"

// Account holds the live balance state for one client.
// Total is never stored; it is always derived from available plus held,
// so the two can never drift apart.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// NewAccount returns an unlocked account with zero balances.
func NewAccount(client ClientID) *Account {
	return &Account{Client: client}
}

// Total returns available plus held.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// View renders the account as an outbound snapshot row.
func (a *Account) View() AccountView {
	return AccountView{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// AccountView is the outbound representation of an account, emitted in the
// final snapshot and published on every applied event.
type AccountView struct {
	Client    ClientID        `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}
