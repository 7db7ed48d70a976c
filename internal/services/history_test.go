package services

import (
	"context"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newHistoryFixture(t *testing.T) (*fixture, *HistoryService, *fakeClock) {
	t.Helper()
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day}, models.V2)
	clock := &fakeClock{t: time.Unix(testNow, 0)}
	return f, newHistoryService(f.loader, f.logger, 15*time.Second, clock.now), clock
}

func TestClampHistoryParams(t *testing.T) {
	r, s := ClampHistoryParams(0, 0)
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, s)

	r, s = ClampHistoryParams(10_000, 100)
	assert.Equal(t, 720, r)
	assert.Equal(t, 24, s)

	r, s = ClampHistoryParams(168, 6)
	assert.Equal(t, 168, r)
	assert.Equal(t, 6, s)
}

func TestHistorySteps(t *testing.T) {
	assert.Equal(t, 5, HistorySteps(24, 6))
	assert.Equal(t, 6, HistorySteps(25, 6))
	assert.Equal(t, 29, HistorySteps(168, 6))
	assert.Equal(t, 2, HistorySteps(1, 24))
	assert.Equal(t, 300, HistorySteps(720, 1))
}

func TestComputeHistory_LengthMatchesGrid(t *testing.T) {
	_, svc, _ := newHistoryFixture(t)

	for _, tc := range [][2]int{{24, 6}, {0, 0}, {720, 1}, {100, 7}, {5000, 50}} {
		h, err := svc.ComputeHistory(context.Background(), tc[0], tc[1])
		require.NoError(t, err)
		r, s := ClampHistoryParams(tc[0], tc[1])
		assert.Len(t, h.Points, HistorySteps(r, s), "range=%d step=%d", tc[0], tc[1])
	}
}

func TestComputeHistory_ReplaysWindows(t *testing.T) {
	f, svc, _ := newHistoryFixture(t)
	p := scenarioPosition(testutil.Key(1))
	p.StartTs = testNow - 12*3600
	p.BuffAppliedFromCycle = uint64(testNow - 6*3600)
	f.addPosition(p, models.V2)
	f.addProfile(models.UserProfile{Owner: testutil.Key(1), Level: 3}, models.V2)

	h, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)
	require.Len(t, h.Points, 5)

	assert.Equal(t, testNow-24*3600, h.Points[0].Ts)
	assert.Equal(t, testNow, h.Points[4].Ts)

	// -24h, -18h: not started
	assert.Zero(t, h.Points[0].BaseHp)
	assert.Zero(t, h.Points[1].EffectiveHp)
	// -12h: active, buff gate still closed
	assert.Equal(t, uint64(1000), h.Points[2].BaseHp)
	assert.Equal(t, uint64(1000), h.Points[2].BuffHp)
	assert.Equal(t, uint64(1034), h.Points[2].EffectiveHp)
	// -6h onwards: buffed
	assert.Equal(t, uint64(1020), h.Points[3].BuffHp)
	assert.Equal(t, uint64(1054), h.Points[4].EffectiveHp)
}

func TestComputeHistory_FloorApplies(t *testing.T) {
	f, svc, _ := newHistoryFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day, NetworkHpActive: 777}, models.V2)

	h, err := svc.ComputeHistory(context.Background(), 12, 6)
	require.NoError(t, err)
	for _, p := range h.Points {
		assert.Equal(t, uint64(777), p.EffectiveHp)
	}
}

func TestComputeHistory_CacheHitAndExpiry(t *testing.T) {
	f, svc, clock := newHistoryFixture(t)

	first, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)
	scans := f.ledger.ScanCount()

	clock.t = clock.t.Add(10 * time.Second)
	second, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, scans, f.ledger.ScanCount())

	clock.t = clock.t.Add(6 * time.Second)
	third, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Greater(t, f.ledger.ScanCount(), scans)
}

func TestComputeHistory_CacheKeyedByParams(t *testing.T) {
	f, svc, _ := newHistoryFixture(t)

	_, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)
	scans := f.ledger.ScanCount()

	h, err := svc.ComputeHistory(context.Background(), 48, 1)
	require.NoError(t, err)
	assert.Equal(t, 48, h.RangeHours)
	assert.Greater(t, f.ledger.ScanCount(), scans)

	// out-of-range params hit the slot of their clamped form
	scans = f.ledger.ScanCount()
	_, err = svc.ComputeHistory(context.Background(), 48, 0)
	require.NoError(t, err)
	assert.Equal(t, scans, f.ledger.ScanCount())
}

func TestComputeHistory_NoStaleServeOnError(t *testing.T) {
	f, svc, clock := newHistoryFixture(t)

	_, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	f.ledger.ScanErr = ledger.ErrUpstreamUnavailable
	_, err = svc.ComputeHistory(context.Background(), 24, 6)
	assert.ErrorIs(t, err, ledger.ErrUpstreamUnavailable)

	f.ledger.ScanErr = nil
	h, err := svc.ComputeHistory(context.Background(), 24, 6)
	require.NoError(t, err)
	assert.Len(t, h.Points, 5)
}

func TestComputeHistory_Cancelled(t *testing.T) {
	_, svc, _ := newHistoryFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ComputeHistory(ctx, 24, 6)
	assert.ErrorIs(t, err, context.Canceled)
}
