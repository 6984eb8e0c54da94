package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"payments-engine/internal/domain"
)

// WriteSnapshot renders account views as CSV with the header
// "client,available,held,total,locked". Amounts are printed with exactly
// four decimal places so output is byte-stable across runs.
func WriteSnapshot(w io.Writer, views []domain.AccountView) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	for _, v := range views {
		record := []string{
			strconv.FormatUint(uint64(v.Client), 10),
			v.Available.StringFixed(4),
			v.Held.StringFixed(4),
			v.Total.StringFixed(4),
			strconv.FormatBool(v.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write snapshot row for client %d: %w", v.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
