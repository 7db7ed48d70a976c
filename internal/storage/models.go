package storage

import "time"

// Recompute run outcomes.
const (
	RunStatusWritten  = "written"
	RunStatusDryRun   = "dry_run"
	RunStatusFailed   = "failed"
	RunStatusDisabled = "write_disabled"
)

// RecomputeRun is one audited weighted-stake recomputation.
type RecomputeRun struct {
	ID          int64     `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	DryRun      bool      `json:"dryRun"`
	Status      string    `json:"status"`
	Total       uint64    `json:"total,string"`
	Counted     int       `json:"counted"`
	SkippedZero int       `json:"skippedZero"`
	Malformed   int       `json:"malformed"`
	Signature   string    `json:"signature,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// ResolvedAlert marks an alert id as acknowledged by an operator.
type ResolvedAlert struct {
	ID         string    `json:"id"`
	ResolvedAt time.Time `json:"resolvedAt"`
}
