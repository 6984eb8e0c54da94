package utils

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	runEntropy   = ulid.Monotonic(rand.Reader, 0)
	runEntropyMu sync.Mutex
)

// NewRunID returns a ULID identifying one engine run. Run ids tag
// published account events and dead letters so downstream consumers can
// tell replays apart.
func NewRunID() string {
	runEntropyMu.Lock()
	defer runEntropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), runEntropy).String()
}
