package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
)

var (
	ErrMissingColumn = errors.New("csv header is missing a required column")
	ErrUnknownColumn = errors.New("csv header has an unknown column")
)

type columnIndex struct {
	typ, client, tx, amount int
}

// Reader streams transaction events out of a CSV document with the header
// "type, client, tx, amount". Whitespace around fields is tolerated and
// the amount column may be empty or absent for the dispute family of rows.
//
// Representation errors are handled here, not in the core: a malformed
// header is fatal, while an unparsable row is skipped with a warning so a
// single bad record never takes down the rest of the stream.
type Reader struct {
	csv     *csv.Reader
	logger  *zap.Logger
	idx     columnIndex
	started bool
	line    int
	skipped int
}

// NewReader wraps r. The header row is consumed on the first Read call.
func NewReader(r io.Reader, logger *zap.Logger) *Reader {
	cr := csv.NewReader(r)
	// Rows for dispute, resolve and chargeback often omit the trailing
	// amount field entirely.
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr, logger: logger, idx: columnIndex{typ: -1, client: -1, tx: -1, amount: -1}}
}

// Skipped returns how many rows were dropped as unparsable so far.
func (r *Reader) Skipped() int { return r.skipped }

// Read returns the next well-formed event. It reports io.EOF once the
// input is exhausted and a non-nil error only for a broken header or a
// failing underlying reader.
func (r *Reader) Read() (domain.Event, error) {
	if !r.started {
		if err := r.readHeader(); err != nil {
			return domain.Event{}, err
		}
		r.started = true
	}

	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return domain.Event{}, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				r.skip(perr.Line, err)
				continue
			}
			return domain.Event{}, fmt.Errorf("read csv record: %w", err)
		}
		r.line++

		ev, err := r.parse(record)
		if err != nil {
			r.skip(r.line, err)
			continue
		}
		return ev, nil
	}
}

func (r *Reader) skip(line int, err error) {
	r.skipped++
	r.logger.Warn("skipping unparsable csv row",
		zap.Int("line", line),
		zap.Error(err),
	)
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	r.line = 1

	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "type":
			r.idx.typ = i
		case "client":
			r.idx.client = i
		case "tx":
			r.idx.tx = i
		case "amount":
			r.idx.amount = i
		default:
			return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
	}
	for name, i := range map[string]int{"type": r.idx.typ, "client": r.idx.client, "tx": r.idx.tx} {
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return nil
}

func (r *Reader) parse(record []string) (domain.Event, error) {
	if r.idx.typ >= len(record) || r.idx.client >= len(record) || r.idx.tx >= len(record) {
		return domain.Event{}, fmt.Errorf("row has %d fields", len(record))
	}

	typ, err := domain.ParseEventType(strings.TrimSpace(record[r.idx.typ]))
	if err != nil {
		return domain.Event{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(record[r.idx.client]), 10, 16)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse client id: %w", err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(record[r.idx.tx]), 10, 32)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse tx id: %w", err)
	}

	ev := domain.Event{
		Type:   typ,
		Client: domain.ClientID(client),
		Tx:     domain.TxID(tx),
	}

	if r.idx.amount >= 0 && r.idx.amount < len(record) {
		if raw := strings.TrimSpace(record[r.idx.amount]); raw != "" {
			amt, err := decimal.NewFromString(raw)
			if err != nil {
				return domain.Event{}, fmt.Errorf("parse amount: %w", err)
			}
			if amt.Exponent() < -4 {
				return domain.Event{}, fmt.Errorf("amount %s: %w", raw, domain.ErrAmountPrecision)
			}
			ev.Amount = &amt
		}
	}
	return ev, nil
}
