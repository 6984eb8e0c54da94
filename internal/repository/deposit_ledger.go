package repository

import "payments-engine/internal/domain"

// DepositLedger is the append-only index of settled deposits keyed by
// transaction id. Entries are created at deposit time; afterwards only
// their dispute state changes and they are never removed. Not safe for
// concurrent use.
type DepositLedger struct {
	entries map[domain.TxID]*domain.DepositEntry
}

// NewDepositLedger returns an empty ledger.
func NewDepositLedger() *DepositLedger {
	return &DepositLedger{entries: make(map[domain.TxID]*domain.DepositEntry)}
}

// Record stores a new settled deposit entry. Recording the same
// transaction id twice is a caller bug; the processor checks Contains
// before recording.
func (l *DepositLedger) Record(entry *domain.DepositEntry) {
	l.entries[entry.Tx] = entry
}

// Get returns the entry for the transaction id if one was recorded.
func (l *DepositLedger) Get(tx domain.TxID) (*domain.DepositEntry, bool) {
	entry, ok := l.entries[tx]
	return entry, ok
}

// Contains reports whether the transaction id was already recorded.
func (l *DepositLedger) Contains(tx domain.TxID) bool {
	_, ok := l.entries[tx]
	return ok
}

// Len returns the number of recorded deposits.
func (l *DepositLedger) Len() int { return len(l.entries) }
