package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"payments-engine/internal/domain"
	"payments-engine/internal/metrics"
	"payments-engine/internal/repository"
)

// ErrSequencerClosed is returned for submissions after the sequencer has
// drained and stopped.
var ErrSequencerClosed = errors.New("sequencer closed")

// Notifier receives the result of every event the sequencer processes.
// Implementations must not block for long; they run on the event loop.
type Notifier interface {
	EventApplied(ctx context.Context, ev domain.Event, view domain.AccountView)
	EventRejected(ctx context.Context, ev domain.Event, reason domain.Reason)
}

type applyResult struct {
	outcome domain.Outcome
	err     error
}

type request struct {
	event   *domain.Event
	inspect func(book *repository.AccountBook)
	reply   chan applyResult
}

// Sequencer funnels events from concurrent surfaces (HTTP, Kafka) through
// a single goroutine so the processor always sees a strictly ordered
// stream. Reads go through Inspect on the same goroutine, which keeps the
// book and ledger free of locks.
type Sequencer struct {
	proc      *Processor
	book      *repository.AccountBook
	in        chan request
	notifiers []Notifier
	logger    *zap.Logger
	done      chan struct{}
}

// NewSequencer builds a sequencer over the processor. Run must be started
// before Submit or Inspect are called.
func NewSequencer(proc *Processor, book *repository.AccountBook, buffer int, logger *zap.Logger, notifiers ...Notifier) *Sequencer {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Sequencer{
		proc:      proc,
		book:      book,
		in:        make(chan request, buffer),
		notifiers: notifiers,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Run processes submissions until ctx is canceled, then drains whatever
// was already queued and stops. It must be called exactly once.
func (s *Sequencer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain(context.WithoutCancel(ctx))
			close(s.done)
			return
		case req := <-s.in:
			s.handle(ctx, req)
		}
	}
}

func (s *Sequencer) drain(ctx context.Context) {
	for {
		select {
		case req := <-s.in:
			s.handle(ctx, req)
		default:
			return
		}
	}
}

// Done is closed once the sequencer has stopped.
func (s *Sequencer) Done() <-chan struct{} { return s.done }

// Submit queues one event and waits for its outcome.
func (s *Sequencer) Submit(ctx context.Context, ev domain.Event) (domain.Outcome, error) {
	reply := make(chan applyResult, 1)
	select {
	case s.in <- request{event: &ev, reply: reply}:
	case <-s.done:
		return domain.Outcome{}, ErrSequencerClosed
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.outcome, res.err
	case <-s.done:
		// the drain may have answered just before stopping
		select {
		case res := <-reply:
			return res.outcome, res.err
		default:
			return domain.Outcome{}, ErrSequencerClosed
		}
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}
}

// Inspect runs fn on the event-loop goroutine with the account book, so
// callers can read consistent state while events keep flowing in order.
func (s *Sequencer) Inspect(ctx context.Context, fn func(book *repository.AccountBook)) error {
	reply := make(chan applyResult, 1)
	select {
	case s.in <- request{inspect: fn, reply: reply}:
	case <-s.done:
		return ErrSequencerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-s.done:
		select {
		case <-reply:
			return nil
		default:
			return ErrSequencerClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) handle(ctx context.Context, req request) {
	if req.inspect != nil {
		req.inspect(s.book)
		req.reply <- applyResult{}
		return
	}

	ev := *req.event
	start := time.Now()
	out, err := s.proc.Apply(ev)
	metrics.EventApplyDuration.Observe(time.Since(start).Seconds())
	req.reply <- applyResult{outcome: out, err: err}

	if err != nil {
		s.logger.Error("unprocessable event",
			zap.String("type", string(ev.Type)),
			zap.Uint32("tx", uint32(ev.Tx)),
			zap.Error(err),
		)
		return
	}

	metrics.EventsTotal.WithLabelValues(string(ev.Type), string(out.Status)).Inc()
	metrics.AccountsKnown.Set(float64(s.book.Len()))

	if out.IsApplied() {
		if acc, ok := s.book.Get(ev.Client); ok {
			view := acc.View()
			for _, n := range s.notifiers {
				n.EventApplied(ctx, ev, view)
			}
		}
		return
	}

	metrics.RejectionsTotal.WithLabelValues(string(out.Reason)).Inc()
	s.logger.Debug("event rejected",
		zap.String("type", string(ev.Type)),
		zap.Uint16("client", uint16(ev.Client)),
		zap.Uint32("tx", uint32(ev.Tx)),
		zap.String("reason", string(out.Reason)),
	)
	for _, n := range s.notifiers {
		n.EventRejected(ctx, ev, out.Reason)
	}
}
