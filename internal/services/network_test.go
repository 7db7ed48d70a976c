package services

import (
	"context"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func newNetworkService(f *fixture) *NetworkService {
	return NewNetworkService(f.loader, f.ledger, f.addresses, f.logger, f.metrics, f.conf).(*NetworkService)
}

func TestComputeNetworkAggregate_Scenario(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day}, models.V2)
	f.addPosition(scenarioPosition(testutil.Key(1)), models.V2)
	f.addProfile(models.UserProfile{Owner: testutil.Key(1), Level: 3}, models.V2)

	report, err := newNetworkService(f).ComputeNetworkAggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), report.BaseHp)
	assert.Equal(t, uint64(1020), report.BuffedHp)
	assert.Equal(t, uint64(20), report.RigBuffHp)
	assert.Equal(t, uint64(1054), report.EffectiveHp)
	assert.Equal(t, uint64(34), report.AccountBonusHp)
	assert.Equal(t, 1, report.ActiveOwners)
	require.NotNil(t, report.MaxOwnerSharePct)
	assert.InDelta(t, 100.0, *report.MaxOwnerSharePct, 1e-9)
	assert.Equal(t, uint64(1054), f.metrics.NetworkEffectiveHp)
}

func TestComputeNetworkAggregate_FloorWins(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day, NetworkHpActive: 50_000}, models.V2)
	f.addPosition(scenarioPosition(testutil.Key(1)), models.V2)

	report, err := newNetworkService(f).ComputeNetworkAggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(50_000), report.EffectiveHp)
	assert.Equal(t, uint64(1020), report.LocalEffectiveHp)
	assert.Equal(t, uint64(50_000), report.NetworkHpActive)
	assert.Equal(t, uint64(50_000-1020), report.AccountBonusHp)
}

func TestComputeNetworkAggregate_Empty(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{}, models.V1)

	report, err := newNetworkService(f).ComputeNetworkAggregate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.EffectiveHp)
	assert.Nil(t, report.MaxOwnerSharePct)
	assert.Empty(t, report.TopOwners)
}

func TestComputeNetworkAggregate_TopOwnersBounded(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day}, models.V2)
	for i := 1; i <= topOwners+3; i++ {
		p := scenarioPosition(testutil.Key(byte(i)))
		p.Hp = uint64(i) * 100
		f.addPosition(p, models.V2)
	}

	report, err := newNetworkService(f).ComputeNetworkAggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, topOwners+3, report.ActiveOwners)
	require.Len(t, report.TopOwners, topOwners)
	assert.Equal(t, testutil.Key(byte(topOwners+3)), report.TopOwners[0].Owner)
}

func TestWalletHashpower_OwnerOnlyAndCached(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day, NetworkHpActive: 9}, models.V2)
	owner := testutil.Key(1)
	f.addPosition(scenarioPosition(owner), models.V2)
	expired := scenarioPosition(owner)
	expired.Expired = true
	f.addPosition(expired, models.V2)
	f.addPosition(scenarioPosition(testutil.Key(2)), models.V2)
	f.addProfile(models.UserProfile{Owner: owner, Level: 3}, models.V1)

	svc := newNetworkService(f)
	report, err := svc.WalletHashpower(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, uint8(3), report.Level)
	assert.Equal(t, uint64(340), report.LevelBonusBps)
	assert.Equal(t, 2, report.Positions)
	assert.Equal(t, 1, report.ActivePositions)
	assert.Equal(t, uint64(1000), report.BaseHp)
	assert.Equal(t, uint64(1020), report.BuffedHp)
	assert.Equal(t, uint64(1054), report.EffectiveHp)
	assert.Equal(t, uint64(34), report.AccountBonusHp)
	assert.Equal(t, uint64(9), report.NetworkHpActive)

	scans := f.ledger.ScanCount()
	again, err := svc.WalletHashpower(context.Background(), owner)
	require.NoError(t, err)
	assert.Same(t, report, again)
	assert.Equal(t, scans, f.ledger.ScanCount())
}

func TestWalletHashpower_NoProfileDefaultsToLevelOne(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day}, models.V2)
	f.addPosition(scenarioPosition(testutil.Key(1)), models.V2)

	report, err := newNetworkService(f).WalletHashpower(context.Background(), testutil.Key(1))
	require.NoError(t, err)
	assert.Equal(t, uint8(1), report.Level)
	assert.Equal(t, report.BuffedHp, report.EffectiveHp)
	assert.Zero(t, report.AccountBonusHp)
}

func TestWalletHashpower_ErrorNotCached(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, models.ProtocolConfig{SecondsPerDay: day}, models.V2)
	f.ledger.ScanErr = ledger.ErrUpstreamUnavailable
	svc := newNetworkService(f)

	_, err := svc.WalletHashpower(context.Background(), testutil.Key(1))
	require.ErrorIs(t, err, ledger.ErrUpstreamUnavailable)

	f.ledger.ScanErr = nil
	_, err = svc.WalletHashpower(context.Background(), testutil.Key(1))
	assert.NoError(t, err)
}

func rewardConfig() models.ProtocolConfig {
	return models.ProtocolConfig{
		MindDecimals:      6,
		EpochSeconds:      day,
		EmissionStartTs:   testNow - 3*day - 5,
		MpCapBpsPerWallet: 10_000,
		MinedCap:          1_000_000_000,
		SecondsPerDay:     day,
	}
}

func (f *fixture) putEpoch(t *testing.T, epoch uint64, totalMp uint64, emission uint64) {
	t.Helper()
	addr, err := f.addresses.EpochState(epoch)
	require.NoError(t, err)
	f.ledger.PutAccount(addr, testutil.EncodeEpochState(models.EpochState{
		EpochIndex:       epoch,
		TotalEffectiveMp: uint128.From64(totalMp),
		DailyEmission:    emission,
	}))
}

func (f *fixture) putUserEpoch(t *testing.T, owner models.PublicKey, epoch uint64, userMp uint64) {
	t.Helper()
	addr, err := f.addresses.UserEpoch(owner, epoch)
	require.NoError(t, err)
	f.ledger.PutAccount(addr, testutil.EncodeUserEpoch(models.UserEpoch{Owner: owner, EpochIndex: epoch, UserMp: uint128.From64(userMp)}))
}

func TestEstimateReward_ProRata(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, rewardConfig(), models.V2)
	owner := testutil.Key(1)
	f.putEpoch(t, 3, 1000, 1_000_000)
	f.putUserEpoch(t, owner, 3, 100)

	est, err := newNetworkService(f).EstimateReward(context.Background(), owner)
	require.NoError(t, err)

	assert.True(t, est.Available)
	assert.Equal(t, uint64(3), est.Epoch)
	assert.Equal(t, uint64(100_000), est.Reward)
	assert.Equal(t, "0.1", est.RewardDisplay)
	assert.Equal(t, "100", est.UserMp)
	assert.Equal(t, "1000", est.TotalEffectiveMp)
}

func TestEstimateReward_CappedByRemainingMint(t *testing.T) {
	f := newFixture(t)
	cfg := rewardConfig()
	cfg.MinedCap = 500
	cfg.MinedTotal = 450
	f.putConfig(t, cfg, models.V2)
	owner := testutil.Key(1)
	f.putEpoch(t, 3, 1000, 1_000_000)
	f.putUserEpoch(t, owner, 3, 100)

	est, err := newNetworkService(f).EstimateReward(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), est.Reward)
}

func TestEstimateReward_MissingUserEpoch(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, rewardConfig(), models.V2)
	f.putEpoch(t, 3, 1000, 1_000_000)

	est, err := newNetworkService(f).EstimateReward(context.Background(), testutil.Key(1))
	require.NoError(t, err)
	assert.False(t, est.Available)
	assert.Zero(t, est.Reward)
	assert.Equal(t, "1000", est.TotalEffectiveMp)
	assert.NotEmpty(t, est.Reason)
}

func TestEstimateReward_MissingEpoch(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, rewardConfig(), models.V2)

	est, err := newNetworkService(f).EstimateReward(context.Background(), testutil.Key(1))
	require.NoError(t, err)
	assert.False(t, est.Available)
	assert.Equal(t, "0", est.RewardDisplay)
}

func TestEstimateReward_NotStarted(t *testing.T) {
	f := newFixture(t)
	cfg := rewardConfig()
	cfg.EmissionStartTs = testNow + 10
	f.putConfig(t, cfg, models.V2)

	est, err := newNetworkService(f).EstimateReward(context.Background(), testutil.Key(1))
	require.NoError(t, err)
	assert.False(t, est.Available)
	assert.Zero(t, est.Epoch)
	assert.Equal(t, 1, f.ledger.Reads, "only the config account is read")
}

func TestEstimateReward_ReadFailure(t *testing.T) {
	f := newFixture(t)
	f.putConfig(t, rewardConfig(), models.V2)
	f.ledger.ClockErr = ledger.ErrUpstreamUnavailable

	_, err := newNetworkService(f).EstimateReward(context.Background(), testutil.Key(1))
	assert.ErrorIs(t, err, ledger.ErrUpstreamUnavailable)
}
