package health

import "math"

// targetStakingSharePct is the share of mining inflow meant for staking rewards.
const targetStakingSharePct = 30

// FlowStats are token flows over one window, in whole XNT.
type FlowStats struct {
	XntFromMining       float64 `json:"xntFromMining"`
	XntToStakingRewards float64 `json:"xntToStakingRewards"`
	XntToTreasury       float64 `json:"xntToTreasury"`
	XntUsedForBuyback   float64 `json:"xntUsedForBuyback"`
	XntAddedToLp        float64 `json:"xntAddedToLp"`
}

// EconomicSources holds whatever flow data is known. Missing pieces leave the
// matching input nil so the scorer treats it as neutral.
type EconomicSources struct {
	RewardPoolXnt    *float64   `json:"rewardPoolXnt"`
	Flows7d          *FlowStats `json:"flows7d"`
	Flows30d         *FlowStats `json:"flows30d"`
	ConcentrationPct *float64   `json:"concentrationPct"`
}

func DeriveEconomicInputs(src EconomicSources) EconomicInputs {
	in := EconomicInputs{ConcentrationPct: src.ConcentrationPct}

	if src.Flows7d != nil {
		f := src.Flows7d
		if src.RewardPoolXnt != nil && f.XntToStakingRewards > 0 {
			runway := *src.RewardPoolXnt / (f.XntToStakingRewards / 7)
			in.RunwayDays = &runway
		}
		if f.XntFromMining > 0 {
			diff := math.Abs(f.XntToStakingRewards/f.XntFromMining*100 - targetStakingSharePct)
			in.SplitDiffPct = &diff
		}
	}

	if src.Flows30d != nil {
		f := src.Flows30d
		net := f.XntToTreasury - f.XntUsedForBuyback - f.XntAddedToLp
		in.TreasuryNet = &net
		if f.XntFromMining > 0 {
			ratio := net / f.XntFromMining
			in.TreasuryRatio = &ratio
		}
	}
	return in
}
