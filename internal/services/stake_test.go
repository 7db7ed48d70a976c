package services

import (
	"context"
	"errors"
	"math"
	"minelens/internal/hashpower"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/storage"
	"minelens/internal/structures"
	"minelens/internal/testutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStakeFixture(t *testing.T, writer ledger.AggregateWriter) (*fixture, *StakeService, *storage.SQLiteStorage) {
	t.Helper()
	f := newFixture(t)
	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := NewStakeService(f.loader, writer, db, f.logger, f.metrics).(*StakeService)
	return f, svc, db
}

func (f *fixture) addStake(amount uint64, durationDays, xpBoostBps uint16) {
	f.ledger.AddProgramAccount(testutil.EncodeStakingPosition(models.StakingPosition{
		Owner:        testutil.Key(byte(amount)),
		Amount:       amount,
		DurationDays: durationDays,
		XpBoostBps:   xpBoostBps,
	}))
}

func TestComputeWeightedStakeTotal_Scenario(t *testing.T) {
	f, svc, _ := newStakeFixture(t, &testutil.MockWriter{})
	f.putConfig(t, models.ProtocolConfig{StakingWeightedTotal: 1_312_500}, models.V2)
	f.addStake(1_000_000, 30, 500)
	f.addStake(0, 14, 0)

	report, err := svc.ComputeWeightedStakeTotal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1_312_500), report.TotalWeighted)
	assert.Equal(t, 1, report.Counted)
	assert.Equal(t, 1, report.SkippedZero)
	assert.True(t, report.InSync)
	assert.Equal(t, "v2", report.ConfigVersion)
}

func TestComputeWeightedStakeTotal_Drift(t *testing.T) {
	f, svc, _ := newStakeFixture(t, &testutil.MockWriter{})
	f.putConfig(t, models.ProtocolConfig{StakingWeightedTotal: 5}, models.V2)
	f.addStake(1000, 7, 0)
	f.addStake(1000, 90, 0)

	report, err := svc.ComputeWeightedStakeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000+1500), report.TotalWeighted)
	assert.Equal(t, uint64(5), report.OnChainTotal)
	assert.False(t, report.InSync)
}

func TestComputeWeightedStakeTotal_SkipsMalformed(t *testing.T) {
	f, svc, _ := newStakeFixture(t, &testutil.MockWriter{})
	f.putConfig(t, models.ProtocolConfig{}, models.V2)
	f.addStake(1000, 7, 0)
	size, err := models.LayoutSize(models.KindStakingPosition, models.V1)
	require.NoError(t, err)
	f.ledger.InjectScanResult(size, make([]byte, 20))

	report, err := svc.ComputeWeightedStakeTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), report.TotalWeighted)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, 1, f.metrics.Malformed["StakingPosition"])
}

func TestComputeWeightedStakeTotal_Overflow(t *testing.T) {
	f, svc, _ := newStakeFixture(t, &testutil.MockWriter{})
	f.putConfig(t, models.ProtocolConfig{}, models.V2)
	f.addStake(math.MaxUint64/2, 7, 0)
	f.addStake(math.MaxUint64/2+2, 7, 0)

	_, err := svc.ComputeWeightedStakeTotal(context.Background())
	assert.ErrorIs(t, err, hashpower.ErrAmountOverflow)
}

func TestRecompute_DryRunDoesNotWrite(t *testing.T) {
	writer := &testutil.MockWriter{}
	f, svc, db := newStakeFixture(t, writer)
	f.addStake(1_000_000, 30, 500)

	run, err := svc.Recompute(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, storage.RunStatusDryRun, run.Status)
	assert.Equal(t, uint64(1_312_500), run.Total)
	assert.Empty(t, writer.Writes())
	assert.Equal(t, 1, f.metrics.RecomputeRuns[storage.RunStatusDryRun])

	runs, err := db.RecentRecomputeRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].DryRun)
}

func TestRecompute_WritesOnceAndIsIdempotent(t *testing.T) {
	writer := &testutil.MockWriter{}
	f, svc, _ := newStakeFixture(t, writer)
	f.addStake(1_000_000, 30, 500)
	f.addStake(2_000, 14, 0)

	first, err := svc.Recompute(context.Background(), false)
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, storage.RunStatusWritten, first.Status)
	assert.Equal(t, "sig-1", first.Signature)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, []uint64{1_314_700, 1_314_700}, writer.Writes())
	assert.Equal(t, uint64(1_314_700), f.metrics.WeightedTotal)
	assert.False(t, svc.IsRunning())
}

func TestRecompute_WriteFailureIsRecordedNotRetried(t *testing.T) {
	writer := &testutil.MockWriter{Err: ledger.ErrUpstreamUnavailable}
	f, svc, db := newStakeFixture(t, writer)
	f.addStake(1000, 7, 0)

	run, err := svc.Recompute(context.Background(), false)
	require.ErrorIs(t, err, ledger.ErrUpstreamUnavailable)
	require.NotNil(t, run)

	assert.Equal(t, storage.RunStatusFailed, run.Status)
	assert.Equal(t, uint64(1000), run.Total)
	assert.Contains(t, run.Error, "upstream unavailable")
	assert.Equal(t, 1, f.ledger.ScanCount())

	runs, err := db.RecentRecomputeRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, storage.RunStatusFailed, runs[0].Status)
}

func TestRecompute_WriterDisabled(t *testing.T) {
	writer := ledger.NewAggregateWriter(&structures.Config{}, &testutil.MockLogger{})
	f, svc, _ := newStakeFixture(t, writer)
	f.addStake(1000, 7, 0)

	run, err := svc.Recompute(context.Background(), false)
	require.ErrorIs(t, err, ledger.ErrWriterDisabled)
	assert.Equal(t, storage.RunStatusDisabled, run.Status)
	assert.Equal(t, uint64(1000), run.Total)
	assert.Equal(t, 1, f.metrics.RecomputeRuns[storage.RunStatusDisabled])
}

func TestRecompute_ScanFailure(t *testing.T) {
	f, svc, _ := newStakeFixture(t, &testutil.MockWriter{})
	f.ledger.ScanErr = errors.New("boom")

	run, err := svc.Recompute(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, storage.RunStatusFailed, run.Status)
	assert.Equal(t, 4, f.ledger.ScanCount(), "scan is retried")
}

func TestRecompute_RejectsConcurrentRun(t *testing.T) {
	writer := &testutil.MockWriter{Block: make(chan struct{})}
	f, svc, _ := newStakeFixture(t, writer)
	f.addStake(1000, 7, 0)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Recompute(context.Background(), false)
		done <- err
	}()
	require.Eventually(t, svc.IsRunning, time.Second, time.Millisecond)

	run, err := svc.Recompute(context.Background(), true)
	assert.ErrorIs(t, err, ErrJobRunning)
	assert.Nil(t, run)

	close(writer.Block)
	require.NoError(t, <-done)
	assert.False(t, svc.IsRunning())
}

func TestRecentRuns(t *testing.T) {
	f, svc, _ := newStakeFixture(t, &testutil.MockWriter{})
	f.addStake(1000, 7, 0)

	for i := 0; i < 3; i++ {
		_, err := svc.Recompute(context.Background(), true)
		require.NoError(t, err)
	}

	runs, err := svc.RecentRuns(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Greater(t, runs[0].ID, runs[1].ID)
}
