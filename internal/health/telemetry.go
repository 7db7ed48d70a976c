package health

import (
	"sort"
	"sync"
	"time"
)

// maxSamples bounds each buffer regardless of window length.
const maxSamples = 10_000

type Sample struct {
	Ts        time.Time `json:"ts"`
	Ok        bool      `json:"ok"`
	LatencyMs float64   `json:"latencyMs"`
	Action    string    `json:"action,omitempty"`
}

type ErrorSample struct {
	Ts      time.Time `json:"ts"`
	Message string    `json:"message"`
}

type Windows struct {
	Rpc    time.Duration
	Tx     time.Duration
	Errors time.Duration
}

func DefaultWindows() Windows {
	return Windows{Rpc: 15 * time.Minute, Tx: 15 * time.Minute, Errors: 10 * time.Minute}
}

type WindowStats struct {
	Samples         int      `json:"samples"`
	SuccessRate     *float64 `json:"successRate"`
	MedianLatencyMs *float64 `json:"medianLatencyMs"`
}

// TelemetrySnapshot is the persisted form of a Recorder.
type TelemetrySnapshot struct {
	Rpc    []Sample      `json:"rpc"`
	Tx     []Sample      `json:"tx"`
	Errors []ErrorSample `json:"errors"`
}

// Recorder owns the rolling sample buffers behind the technical score. Every
// write and read prunes entries that fell out of their window first.
type Recorder struct {
	mu      sync.Mutex
	windows Windows
	now     func() time.Time
	rpc     []Sample
	tx      []Sample
	errs    []ErrorSample
}

func NewRecorder(windows Windows, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{windows: windows, now: now}
}

func (r *Recorder) RecordRpc(ok bool, latency time.Duration) {
	r.ObserveCall("", ok, latency)
}

// ObserveCall records one ledger call attempt as an RPC sample.
func (r *Recorder) ObserveCall(method string, ok bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.rpc = appendBounded(pruneSamples(r.rpc, now.Add(-r.windows.Rpc)), Sample{
		Ts:        now,
		Ok:        ok,
		LatencyMs: max(0, float64(latency)/float64(time.Millisecond)),
		Action:    method,
	})
}

func (r *Recorder) RecordTx(action string, ok bool, latencyMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.tx = appendBounded(pruneSamples(r.tx, now.Add(-r.windows.Tx)), Sample{
		Ts:        now,
		Ok:        ok,
		LatencyMs: max(0, latencyMs),
		Action:    action,
	})
}

func (r *Recorder) RecordAppError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.errs = appendBounded(pruneErrors(r.errs, now.Add(-r.windows.Errors)), ErrorSample{Ts: now, Message: message})
}

func (r *Recorder) RpcStats() WindowStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rpc = pruneSamples(r.rpc, r.now().Add(-r.windows.Rpc))
	return statsOf(r.rpc)
}

func (r *Recorder) TxStats() WindowStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tx = pruneSamples(r.tx, r.now().Add(-r.windows.Tx))
	return statsOf(r.tx)
}

func (r *Recorder) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = pruneErrors(r.errs, r.now().Add(-r.windows.Errors))
	return len(r.errs)
}

// TechnicalInputs assembles scorer inputs from the current windows.
func (r *Recorder) TechnicalInputs() TechnicalInputs {
	rpc := r.RpcStats()
	tx := r.TxStats()
	errs := r.ErrorCount()
	return TechnicalInputs{
		RpcSuccessRate:    rpc.SuccessRate,
		TxSuccessRate:     tx.SuccessRate,
		TxLatencyMedianMs: tx.MedianLatencyMs,
		AppErrors:         &errs,
	}
}

// Snapshot returns pruned copies of all buffers.
func (r *Recorder) Snapshot() *TelemetrySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.rpc = pruneSamples(r.rpc, now.Add(-r.windows.Rpc))
	r.tx = pruneSamples(r.tx, now.Add(-r.windows.Tx))
	r.errs = pruneErrors(r.errs, now.Add(-r.windows.Errors))
	return &TelemetrySnapshot{
		Rpc:    append([]Sample(nil), r.rpc...),
		Tx:     append([]Sample(nil), r.tx...),
		Errors: append([]ErrorSample(nil), r.errs...),
	}
}

// Restore replaces the buffers with a snapshot, dropping expired entries.
func (r *Recorder) Restore(s *TelemetrySnapshot) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.rpc = pruneSamples(append([]Sample(nil), s.Rpc...), now.Add(-r.windows.Rpc))
	r.tx = pruneSamples(append([]Sample(nil), s.Tx...), now.Add(-r.windows.Tx))
	r.errs = pruneErrors(append([]ErrorSample(nil), s.Errors...), now.Add(-r.windows.Errors))
}

func appendBounded[T any](items []T, item T) []T {
	items = append(items, item)
	if over := len(items) - maxSamples; over > 0 {
		items = append(items[:0], items[over:]...)
	}
	return items
}

func pruneSamples(items []Sample, cutoff time.Time) []Sample {
	kept := items[:0]
	for _, s := range items {
		if !s.Ts.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	return kept
}

func pruneErrors(items []ErrorSample, cutoff time.Time) []ErrorSample {
	kept := items[:0]
	for _, e := range items {
		if !e.Ts.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}

func statsOf(samples []Sample) WindowStats {
	stats := WindowStats{Samples: len(samples)}
	if len(samples) == 0 {
		return stats
	}

	ok := 0
	latencies := make([]float64, len(samples))
	for i, s := range samples {
		if s.Ok {
			ok++
		}
		latencies[i] = s.LatencyMs
	}
	rate := float64(ok) / float64(len(samples)) * 100
	stats.SuccessRate = &rate

	sort.Float64s(latencies)
	mid := len(latencies) / 2
	median := latencies[mid]
	if len(latencies)%2 == 0 {
		median = (latencies[mid-1] + latencies[mid]) / 2
	}
	stats.MedianLatencyMs = &median
	return stats
}
