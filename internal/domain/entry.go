package domain

import "github.com/shopspring/decimal"

// DisputeState tracks where a deposit sits in the dispute lifecycle.
// Settled and Disputed cycle via dispute/resolve; ChargedBack is terminal.
type DisputeState string

const (
	DisputeStateSettled     DisputeState = "settled"
	DisputeStateDisputed    DisputeState = "disputed"
	DisputeStateChargedBack DisputeState = "charged_back"
)

// DepositEntry records one settled deposit. Only deposits are disputable,
// so only deposits are recorded. Amount is immutable after creation and
// entries are never removed during a run.
type DepositEntry struct {
	Tx     TxID            `json:"tx"`
	Client ClientID        `json:"client"`
	Amount decimal.Decimal `json:"amount"`
	State  DisputeState    `json:"state"`
}
