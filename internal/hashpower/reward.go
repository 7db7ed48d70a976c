package hashpower

import (
	"errors"
	"math/big"

	"lukechampine.com/uint128"
)

var ErrEpochNotStarted = errors.New("emission has not started")

// RewardInputs is the epoch snapshot that drives a pro-rata reward estimate.
type RewardInputs struct {
	DailyEmission    uint64
	TotalEffectiveMp uint128.Uint128
	UserMp           uint128.Uint128
	MpCapBps         uint16
	MinedCap         uint64
	MinedTotal       uint64
}

// EstimatedReward is the user's pro-rata share of the daily emission with the
// user's mining power capped at MpCapBps of the total, then capped again at
// what may still be minted.
func EstimatedReward(in RewardInputs) (uint64, error) {
	if in.TotalEffectiveMp.IsZero() {
		return 0, nil
	}
	total := in.TotalEffectiveMp.Big()

	capPortion := new(big.Int).Mul(total, big.NewInt(int64(in.MpCapBps)))
	capPortion.Quo(capPortion, big.NewInt(BpsDenominator))

	capped := in.UserMp.Big()
	if capped.Cmp(capPortion) > 0 {
		capped = capPortion
	}
	if capped.Sign() <= 0 {
		return 0, nil
	}

	reward := new(big.Int).Mul(new(big.Int).SetUint64(in.DailyEmission), capped)
	reward.Quo(reward, total)

	remaining := new(big.Int)
	if in.MinedCap > in.MinedTotal {
		remaining.SetUint64(in.MinedCap - in.MinedTotal)
	}
	if reward.Cmp(remaining) > 0 {
		reward = remaining
	}
	return toUint64(reward, "estimated reward")
}

// CurrentEpoch is floor((nowTs - emissionStartTs) / epochSeconds).
func CurrentEpoch(emissionStartTs int64, epochSeconds uint64, nowTs int64) (uint64, error) {
	if epochSeconds == 0 {
		return 0, errors.New("epoch length is zero")
	}
	if nowTs < emissionStartTs {
		return 0, ErrEpochNotStarted
	}
	elapsed := uint64(nowTs - emissionStartTs)
	return elapsed / epochSeconds, nil
}
