package service

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"payments-engine/internal/ingest"
	"payments-engine/internal/report"
	"payments-engine/internal/repository"
	"payments-engine/internal/usecase"
)

// RunBatch replays a CSV transaction file through a fresh engine and
// writes the final account snapshot as CSV to out.
func RunBatch(path string, out io.Writer, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open transactions file: %w", err)
	}
	defer f.Close()

	return Replay(f, out, logger)
}

// Replay consumes events from in until EOF, applies them in order and
// writes the snapshot. Rejected events only affect counters; a replay
// fails only on unreadable input.
func Replay(in io.Reader, out io.Writer, logger *zap.Logger) error {
	book := repository.NewAccountBook()
	ledger := repository.NewDepositLedger()
	proc := usecase.NewProcessor(book, ledger)
	reader := ingest.NewReader(in, logger)

	applied, rejected := 0, 0
	for {
		ev, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}

		outcome, err := proc.Apply(ev)
		if err != nil {
			return fmt.Errorf("apply event: %w", err)
		}
		if outcome.IsApplied() {
			applied++
			continue
		}
		rejected++
		logger.Debug("event rejected",
			zap.String("type", string(ev.Type)),
			zap.Uint16("client", uint16(ev.Client)),
			zap.Uint32("tx", uint32(ev.Tx)),
			zap.String("reason", string(outcome.Reason)),
		)
	}

	logger.Info("replay complete",
		zap.Int("applied", applied),
		zap.Int("rejected", rejected),
		zap.Int("skipped", reader.Skipped()),
		zap.Int("accounts", book.Len()),
	)

	return report.WriteSnapshot(out, book.Snapshot())
}
