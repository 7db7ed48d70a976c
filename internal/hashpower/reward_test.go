package hashpower

import (
	"math"
	"minelens/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestEstimatedReward_ZeroTotal(t *testing.T) {
	reward, err := EstimatedReward(RewardInputs{
		DailyEmission: 1_000_000,
		UserMp:        uint128.From64(500),
		MpCapBps:      10_000,
		MinedCap:      math.MaxUint64,
	})
	require.NoError(t, err)
	assert.Zero(t, reward)
}

func TestEstimatedReward_ProRata(t *testing.T) {
	reward, err := EstimatedReward(RewardInputs{
		DailyEmission:    1_000_000,
		TotalEffectiveMp: uint128.From64(3000),
		UserMp:           uint128.From64(1000),
		MpCapBps:         10_000,
		MinedCap:         10_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(333_333), reward)
}

func TestEstimatedReward_WalletCap(t *testing.T) {
	// cap portion = 10000 * 500 / 10000 = 500, so 5000 is capped to 500
	reward, err := EstimatedReward(RewardInputs{
		DailyEmission:    1_000_000,
		TotalEffectiveMp: uint128.From64(10_000),
		UserMp:           uint128.From64(5000),
		MpCapBps:         500,
		MinedCap:         10_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000), reward)
}

func TestEstimatedReward_ZeroCapBps(t *testing.T) {
	reward, err := EstimatedReward(RewardInputs{
		DailyEmission:    1_000_000,
		TotalEffectiveMp: uint128.From64(10_000),
		UserMp:           uint128.From64(5000),
		MinedCap:         10_000_000,
	})
	require.NoError(t, err)
	assert.Zero(t, reward)
}

func TestEstimatedReward_RemainingMintCap(t *testing.T) {
	in := RewardInputs{
		DailyEmission:    1_000_000,
		TotalEffectiveMp: uint128.From64(100),
		UserMp:           uint128.From64(100),
		MpCapBps:         10_000,
		MinedCap:         5000,
		MinedTotal:       4000,
	}
	reward, err := EstimatedReward(in)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), reward)

	in.MinedTotal = 6000
	reward, err = EstimatedReward(in)
	require.NoError(t, err)
	assert.Zero(t, reward)
}

func TestEstimatedReward_Wide128BitTotals(t *testing.T) {
	total := uint128.New(0, 4)
	user := uint128.New(0, 1)

	reward, err := EstimatedReward(RewardInputs{
		DailyEmission:    8_000_000,
		TotalEffectiveMp: total,
		UserMp:           user,
		MpCapBps:         10_000,
		MinedCap:         math.MaxUint64,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), reward)
}

func TestEstimatedReward_CapAboveTotalBoundedByRemaining(t *testing.T) {
	reward, err := EstimatedReward(RewardInputs{
		DailyEmission:    math.MaxUint64,
		TotalEffectiveMp: uint128.From64(1),
		UserMp:           uint128.From64(4),
		MpCapBps:         40_000,
		MinedCap:         math.MaxUint64,
		MinedTotal:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64-1), reward)
}

func TestCurrentEpoch(t *testing.T) {
	epoch, err := CurrentEpoch(1000, 100, 1350)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), epoch)

	_, err = CurrentEpoch(1000, 100, 999)
	assert.ErrorIs(t, err, ErrEpochNotStarted)

	_, err = CurrentEpoch(1000, 0, 2000)
	assert.Error(t, err)
}

func TestWeightedStake_Scenario(t *testing.T) {
	boosted, err := WeightedStake(1_000_000, 30, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_312_500), boosted)
}

func TestDurationMultiplierBps(t *testing.T) {
	assert.Equal(t, uint64(10_000), DurationMultiplierBps(7))
	assert.Equal(t, uint64(11_000), DurationMultiplierBps(14))
	assert.Equal(t, uint64(12_500), DurationMultiplierBps(30))
	assert.Equal(t, uint64(15_000), DurationMultiplierBps(60))
	assert.Equal(t, uint64(15_000), DurationMultiplierBps(0))
}

func TestSumWeightedStake(t *testing.T) {
	positions := []models.StakingPosition{
		{Amount: 1_000_000, DurationDays: 30, XpBoostBps: 500},
		{Amount: 0, DurationDays: 7},
		{Amount: 1000, DurationDays: 14},
	}

	totals, err := SumWeightedStake(positions)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_313_600), totals.TotalWeighted)
	assert.Equal(t, 2, totals.Counted)
	assert.Equal(t, 1, totals.SkippedZero)

	again, err := SumWeightedStake(positions)
	require.NoError(t, err)
	assert.Equal(t, totals, again)
}

func TestSumWeightedStake_Overflow(t *testing.T) {
	positions := []models.StakingPosition{
		{Amount: math.MaxUint64 / 2, DurationDays: 7},
		{Amount: math.MaxUint64 / 2, DurationDays: 7},
		{Amount: 10, DurationDays: 7},
	}
	_, err := SumWeightedStake(positions)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestMulDiv_WideIntermediate(t *testing.T) {
	got, err := mulDiv(math.MaxUint64, 10_000, 10_000, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)

	_, err = mulDiv(math.MaxUint64, 10_001, 10_000, "x")
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestFormatTokenAmount(t *testing.T) {
	assert.Equal(t, "1.5", FormatTokenAmount(1_500_000_000, 9, 4))
	assert.Equal(t, "0.0001", FormatTokenAmount(123_456, 9, 4))
	assert.Equal(t, "0", FormatTokenAmount(99, 9, 4))
	assert.Equal(t, "42", FormatTokenAmount(42, 0, 4))
	assert.Equal(t, "18446744073.7095", FormatTokenAmount(math.MaxUint64, 9, 4))
}
