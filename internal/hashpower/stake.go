package hashpower

import "minelens/internal/models"

// WeightedStake applies the duration multiplier, then the XP boost, each with
// truncating division.
func WeightedStake(amount uint64, durationDays uint16, xpBoostBps uint16) (uint64, error) {
	weighted, err := mulDiv(amount, DurationMultiplierBps(durationDays), BpsDenominator, "weighted stake")
	if err != nil {
		return 0, err
	}
	return applyBps(weighted, uint64(xpBoostBps), "boosted stake")
}

// StakeTotals is the outcome of one weighted-stake pass.
type StakeTotals struct {
	TotalWeighted uint64 `json:"totalWeighted,string"`
	Counted       int    `json:"counted"`
	SkippedZero   int    `json:"skippedZero"`
}

// SumWeightedStake totals the boosted stake of every position with a nonzero amount.
func SumWeightedStake(positions []models.StakingPosition) (StakeTotals, error) {
	var totals StakeTotals
	for i := range positions {
		if positions[i].Amount == 0 {
			totals.SkippedZero++
			continue
		}
		boosted, err := WeightedStake(positions[i].Amount, positions[i].DurationDays, positions[i].XpBoostBps)
		if err != nil {
			return StakeTotals{}, err
		}
		if totals.TotalWeighted, err = addAmount(totals.TotalWeighted, boosted, "total weighted stake"); err != nil {
			return StakeTotals{}, err
		}
		totals.Counted++
	}
	return totals, nil
}
