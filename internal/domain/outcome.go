package domain

// Status says whether an event changed any state.
type Status string

const (
	StatusApplied  Status = "applied"
	StatusRejected Status = "rejected"
)

// Reason identifies why an event was rejected. A rejection is always local
// to the offending event; processing continues with the next one.
type Reason string

const (
	ReasonInvalidAmount     Reason = "invalid_amount"
	ReasonAccountLocked     Reason = "account_locked"
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonDuplicateTx       Reason = "duplicate_tx"
	ReasonUnknownTx         Reason = "unknown_tx"
	ReasonAlreadyDisputed   Reason = "already_disputed"
	ReasonNotDisputed       Reason = "not_disputed"
	ReasonChargedBack       Reason = "charged_back"
)

// Outcome is the per-event result of Processor.Apply. Reason is set only
// on rejection.
type Outcome struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
}

// IsApplied reports whether the event mutated state.
func (o Outcome) IsApplied() bool { return o.Status == StatusApplied }

// Applied builds the outcome of a successfully applied event.
func Applied() Outcome { return Outcome{Status: StatusApplied} }

// Rejected builds the outcome of an event that failed a precondition.
func Rejected(r Reason) Outcome { return Outcome{Status: StatusRejected, Reason: r} }
