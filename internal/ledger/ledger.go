package ledger

import (
	"context"
	"errors"
	"minelens/internal/models"
	"time"
)

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrWriterDisabled      = errors.New("aggregate writer is not configured")
)

// Account is one raw program account returned by a scan.
type Account struct {
	Address models.PublicKey
	Data    []byte
}

// Scanner lists program accounts of an exact byte size, optionally only those
// whose owner field equals owner.
type Scanner interface {
	ScanAccountsBySize(ctx context.Context, size int, owner *models.PublicKey) ([]Account, error)
}

// Reader fetches one account. A missing account is reported as found=false, not as an error.
type Reader interface {
	ReadAccount(ctx context.Context, address models.PublicKey) (data []byte, found bool, err error)
}

type ClockReader interface {
	ReadClockSeconds(ctx context.Context) (int64, error)
}

// Source is the read side of the ledger.
type Source interface {
	Scanner
	Reader
	ClockReader
}

type WriteResult struct {
	Signature string `json:"signature"`
}

// AggregateWriter submits the single admin-authorized corrective write.
type AggregateWriter interface {
	WriteAggregate(ctx context.Context, value uint64) (*WriteResult, error)
}

// CallObserver is notified after every upstream call attempt.
type CallObserver interface {
	ObserveCall(method string, ok bool, latency time.Duration)
}
