package usecase

import (
	"fmt"

	"payments-engine/internal/domain"
	"payments-engine/internal/repository"
)

// Processor applies transaction events to caller-owned storage. It is the
// single authority on the dispute state machine (settled -> disputed ->
// settled or charged_back, charged_back terminal) and on the locking
// rules: a locked account refuses new deposits and withdrawals but
// disputes already in flight still resolve or charge back.
//
// The processor performs no I/O and keeps no state of its own; the caller
// retains ownership of the book and ledger and reads the snapshot from the
// book once the event sequence is exhausted.
type Processor struct {
	book   *repository.AccountBook
	ledger *repository.DepositLedger
}

// NewProcessor wires a processor over the given storage.
func NewProcessor(book *repository.AccountBook, ledger *repository.DepositLedger) *Processor {
	return &Processor{book: book, ledger: ledger}
}

// Apply executes one event against the current state. Events must be fed
// in input order, one at a time. Every precondition failure degrades to a
// rejection that leaves balances and ledger entries untouched; the
// returned error is non-nil only for an event type the processor does not
// know, which is a caller bug rather than a data condition.
func (p *Processor) Apply(ev domain.Event) (domain.Outcome, error) {
	switch ev.Type {
	case domain.EventTypeDeposit:
		return p.deposit(ev), nil
	case domain.EventTypeWithdrawal:
		return p.withdraw(ev), nil
	case domain.EventTypeDispute:
		return p.dispute(ev), nil
	case domain.EventTypeResolve:
		return p.resolve(ev), nil
	case domain.EventTypeChargeback:
		return p.chargeback(ev), nil
	default:
		return domain.Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownEventType, ev.Type)
	}
}

func (p *Processor) deposit(ev domain.Event) domain.Outcome {
	acc := p.book.GetOrCreate(ev.Client)
	if p.ledger.Contains(ev.Tx) {
		return domain.Rejected(domain.ReasonDuplicateTx)
	}
	if acc.Locked {
		return domain.Rejected(domain.ReasonAccountLocked)
	}
	if ev.Amount == nil || !ev.Amount.IsPositive() {
		return domain.Rejected(domain.ReasonInvalidAmount)
	}
	acc.Available = acc.Available.Add(*ev.Amount)
	p.ledger.Record(&domain.DepositEntry{
		Tx:     ev.Tx,
		Client: ev.Client,
		Amount: *ev.Amount,
		State:  domain.DisputeStateSettled,
	})
	return domain.Applied()
}

func (p *Processor) withdraw(ev domain.Event) domain.Outcome {
	acc := p.book.GetOrCreate(ev.Client)
	// Withdrawal ids share the deposit id space; reusing one is rejected
	// the same way a duplicate deposit is.
	if p.ledger.Contains(ev.Tx) {
		return domain.Rejected(domain.ReasonDuplicateTx)
	}
	if acc.Locked {
		return domain.Rejected(domain.ReasonAccountLocked)
	}
	if ev.Amount == nil || !ev.Amount.IsPositive() {
		return domain.Rejected(domain.ReasonInvalidAmount)
	}
	if acc.Available.LessThan(*ev.Amount) {
		return domain.Rejected(domain.ReasonInsufficientFunds)
	}
	acc.Available = acc.Available.Sub(*ev.Amount)
	return domain.Applied()
}

func (p *Processor) dispute(ev domain.Event) domain.Outcome {
	acc := p.book.GetOrCreate(ev.Client)
	entry, ok := p.ledger.Get(ev.Tx)
	if !ok || entry.Client != ev.Client {
		return domain.Rejected(domain.ReasonUnknownTx)
	}
	switch entry.State {
	case domain.DisputeStateDisputed:
		return domain.Rejected(domain.ReasonAlreadyDisputed)
	case domain.DisputeStateChargedBack:
		return domain.Rejected(domain.ReasonChargedBack)
	}
	acc.Available = acc.Available.Sub(entry.Amount)
	acc.Held = acc.Held.Add(entry.Amount)
	entry.State = domain.DisputeStateDisputed
	return domain.Applied()
}

func (p *Processor) resolve(ev domain.Event) domain.Outcome {
	acc := p.book.GetOrCreate(ev.Client)
	entry, ok := p.ledger.Get(ev.Tx)
	if !ok || entry.Client != ev.Client {
		return domain.Rejected(domain.ReasonUnknownTx)
	}
	if entry.State != domain.DisputeStateDisputed {
		return domain.Rejected(domain.ReasonNotDisputed)
	}
	acc.Held = acc.Held.Sub(entry.Amount)
	acc.Available = acc.Available.Add(entry.Amount)
	entry.State = domain.DisputeStateSettled
	return domain.Applied()
}

func (p *Processor) chargeback(ev domain.Event) domain.Outcome {
	acc := p.book.GetOrCreate(ev.Client)
	entry, ok := p.ledger.Get(ev.Tx)
	if !ok || entry.Client != ev.Client {
		return domain.Rejected(domain.ReasonUnknownTx)
	}
	if entry.State != domain.DisputeStateDisputed {
		return domain.Rejected(domain.ReasonNotDisputed)
	}
	acc.Held = acc.Held.Sub(entry.Amount)
	acc.Locked = true
	entry.State = domain.DisputeStateChargedBack
	return domain.Applied()
}
