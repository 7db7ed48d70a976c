package testutil

import (
	"bytes"
	"context"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/providers"
	"strconv"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	return bytes.Clone(val), nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	return bytes.Clone(val), nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and keeps the
// values services report.
type MockMetrics struct {
	mu                 sync.Mutex
	Malformed          map[string]int
	RecomputeRuns      map[string]int
	WeightedTotal      uint64
	NetworkEffectiveHp uint64
	Persisted          int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Malformed: make(map[string]int), RecomputeRuns: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveCall(_ string, _ bool, _ time.Duration)    {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) IncMalformedSkipped(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Malformed[kind]++
}

func (m *MockMetrics) IncRecomputeRuns(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecomputeRuns[status]++
}

func (m *MockMetrics) SetWeightedTotal(value uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WeightedTotal = value
}

func (m *MockMetrics) SetNetworkEffectiveHp(value uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NetworkEffectiveHp = value
}

// FakeLedger is an in-memory ledger.Source. Scans filter by exact size and,
// when given, by the owner field at offset 8.
type FakeLedger struct {
	mu        sync.Mutex
	accounts  []ledger.Account
	injected  map[int][]ledger.Account
	byAddress map[models.PublicKey][]byte
	Clock     int64
	ScanErr   error
	ReadErr   error
	ClockErr  error
	// FailScans makes the first N scans fail with ledger.ErrUpstreamUnavailable.
	FailScans int
	Scans     int
	Reads     int
}

func NewFakeLedger(clock int64) *FakeLedger {
	return &FakeLedger{
		Clock:     clock,
		injected:  make(map[int][]ledger.Account),
		byAddress: make(map[models.PublicKey][]byte),
	}
}

// InjectScanResult makes scans for size also return data, whatever its
// length, the way a node with a stale index would.
func (f *FakeLedger) InjectScanResult(size int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.injected[size] = append(f.injected[size], ledger.Account{Address: Key(0xEE), Data: data})
}

// ScanCount reports how many scans were issued.
func (f *FakeLedger) ScanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Scans
}

// AddProgramAccount registers an account returned by scans.
func (f *FakeLedger) AddProgramAccount(data []byte) models.PublicKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	var addr models.PublicKey
	addr[0] = 0xA0
	addr[1] = byte(len(f.accounts) >> 8)
	addr[2] = byte(len(f.accounts))
	f.accounts = append(f.accounts, ledger.Account{Address: addr, Data: data})
	return addr
}

// PutAccount registers an account readable by address.
func (f *FakeLedger) PutAccount(address models.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byAddress[address] = data
}

func (f *FakeLedger) ScanAccountsBySize(ctx context.Context, size int, owner *models.PublicKey) ([]ledger.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Scans++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.FailScans > 0 {
		f.FailScans--
		return nil, ledger.ErrUpstreamUnavailable
	}
	if f.ScanErr != nil {
		return nil, f.ScanErr
	}
	var out []ledger.Account
	for _, a := range f.accounts {
		if len(a.Data) != size {
			continue
		}
		if owner != nil && (len(a.Data) < models.OwnerOffset+32 || !bytes.Equal(a.Data[models.OwnerOffset:models.OwnerOffset+32], owner[:])) {
			continue
		}
		out = append(out, a)
	}
	out = append(out, f.injected[size]...)
	return out, nil
}

func (f *FakeLedger) ReadAccount(ctx context.Context, address models.PublicKey) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if f.ReadErr != nil {
		return nil, false, f.ReadErr
	}
	data, ok := f.byAddress[address]
	return data, ok, nil
}

func (f *FakeLedger) ReadClockSeconds(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.ClockErr != nil {
		return 0, f.ClockErr
	}
	return f.Clock, nil
}

// MockWriter implements ledger.AggregateWriter.
type MockWriter struct {
	mu     sync.Mutex
	Values []uint64
	Err    error
	// Block, when set, holds every write until it is closed.
	Block chan struct{}
}

func (w *MockWriter) WriteAggregate(ctx context.Context, value uint64) (*ledger.WriteResult, error) {
	if w.Block != nil {
		select {
		case <-w.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return nil, w.Err
	}
	w.Values = append(w.Values, value)
	return &ledger.WriteResult{Signature: "sig-" + strconv.Itoa(len(w.Values))}, nil
}

func (w *MockWriter) Writes() []uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]uint64(nil), w.Values...)
}
