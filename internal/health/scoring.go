package health

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateGreen  State = "GREEN"
	StateYellow State = "YELLOW"
	StateRed    State = "RED"
)

// neutralScore is what a metric without data contributes.
const neutralScore = 50

const notAvailable = "N/A"

type MetricDetail struct {
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Score  float64 `json:"score"`
	Impact float64 `json:"impact"`
}

type Report struct {
	Score   float64        `json:"score"`
	State   State          `json:"state"`
	Summary string         `json:"summary"`
	Details []MetricDetail `json:"details"`
}

type EconomicInputs struct {
	RunwayDays       *float64 `json:"runwayDays"`
	SplitDiffPct     *float64 `json:"splitDiffPct"`
	ConcentrationPct *float64 `json:"concentrationPct"`
	TreasuryNet      *float64 `json:"treasuryNet"`
	TreasuryRatio    *float64 `json:"treasuryRatio"`
}

type TechnicalInputs struct {
	RpcSuccessRate    *float64 `json:"rpcSuccessRate"`
	TxSuccessRate     *float64 `json:"txSuccessRate"`
	TxLatencyMedianMs *float64 `json:"txLatencyMedianMs"`
	AppErrors         *int     `json:"appErrors"`
}

func detail(label, value string, score float64) MetricDetail {
	return MetricDetail{Label: label, Value: value, Score: score, Impact: impactFromScore(score)}
}

// impactFromScore maps a 0..100 score onto [-1, 1] for display.
func impactFromScore(score float64) float64 {
	impact, _ := decimal.NewFromFloat(score).Sub(decimal.NewFromInt(50)).Div(decimal.NewFromInt(50)).Round(2).Float64()
	return impact
}

func StateFromScore(score float64) State {
	switch {
	case score >= 80:
		return StateGreen
	case score >= 50:
		return StateYellow
	default:
		return StateRed
	}
}

type weighted struct {
	detail MetricDetail
	weight float64
}

// compose rounds the weighted sum to one decimal and clamps it to [0, 100].
func compose(parts []weighted, summaries map[State]string) Report {
	sum := decimal.Zero
	details := make([]MetricDetail, 0, len(parts))
	for _, p := range parts {
		sum = sum.Add(decimal.NewFromFloat(p.weight).Mul(decimal.NewFromFloat(p.detail.Score)))
		details = append(details, p.detail)
	}
	sum = decimal.Min(decimal.NewFromInt(100), decimal.Max(decimal.Zero, sum.Round(1)))
	score, _ := sum.Float64()
	state := StateFromScore(score)
	return Report{Score: score, State: state, Summary: summaries[state], Details: details}
}

func formatDays(v float64) string { return fmt.Sprintf("%.1f days", v) }
func formatPct(v float64) string  { return fmt.Sprintf("%.2f%%", v) }
func formatXnt(v float64) string  { return fmt.Sprintf("%.2f XNT", v) }

func ScoreRunway(days *float64) MetricDetail {
	const label = "Rewards runway"
	if days == nil {
		return detail(label, notAvailable, neutralScore)
	}
	d := *days
	switch {
	case d >= 30:
		return detail(label, formatDays(d), 100)
	case d >= 15:
		return detail(label, formatDays(d), 70)
	case d >= 7:
		return detail(label, formatDays(d), 40)
	default:
		return detail(label, formatDays(d), 10)
	}
}

func ScoreSplitStability(diffPct *float64) MetricDetail {
	const label = "30/70 split stability (7d)"
	if diffPct == nil {
		return detail(label, notAvailable, neutralScore)
	}
	d := *diffPct
	switch {
	case d <= 2:
		return detail(label, formatPct(d), 100)
	case d <= 7:
		return detail(label, formatPct(d), 70)
	case d <= 15:
		return detail(label, formatPct(d), 40)
	default:
		return detail(label, formatPct(d), 10)
	}
}

func ScoreConcentration(maxSharePct *float64) MetricDetail {
	const label = "Concentration risk"
	if maxSharePct == nil {
		return detail(label, notAvailable, neutralScore)
	}
	s := *maxSharePct
	switch {
	case s < 25:
		return detail(label, formatPct(s), 100)
	case s < 40:
		return detail(label, formatPct(s), 60)
	default:
		return detail(label, formatPct(s), 20)
	}
}

func ScoreTreasuryTrend(net, ratio *float64) MetricDetail {
	const label = "Treasury trend (30d)"
	if net == nil {
		return detail(label, notAvailable, neutralScore)
	}
	n := *net
	switch {
	case ratio != nil && *ratio >= 0.2:
		return detail(label, formatXnt(n), 100)
	case ratio != nil && *ratio > 0:
		return detail(label, formatXnt(n), 70)
	case n == 0:
		return detail(label, formatXnt(n), 50)
	case n < 0:
		return detail(label, formatXnt(n), 20)
	default:
		return detail(label, formatXnt(n), 50)
	}
}

var economicSummaries = map[State]string{
	StateGreen:  "Healthy runway and balanced flows.",
	StateYellow: "Some pressure points; monitor runway and concentration.",
	StateRed:    "High risk signals; review runway, concentration and flows.",
}

func ScoreEconomicHealth(in EconomicInputs) Report {
	return compose([]weighted{
		{ScoreRunway(in.RunwayDays), 0.3},
		{ScoreSplitStability(in.SplitDiffPct), 0.3},
		{ScoreConcentration(in.ConcentrationPct), 0.2},
		{ScoreTreasuryTrend(in.TreasuryNet, in.TreasuryRatio), 0.2},
	}, economicSummaries)
}

func ScoreRpcSuccess(rate *float64) MetricDetail {
	const label = "RPC success (15m)"
	if rate == nil {
		return detail(label, notAvailable, neutralScore)
	}
	r := *rate
	value := fmt.Sprintf("%.1f%%", r)
	switch {
	case r >= 99:
		return detail(label, value, 100)
	case r >= 95:
		return detail(label, value, 70)
	case r >= 85:
		return detail(label, value, 40)
	default:
		return detail(label, value, 10)
	}
}

func ScoreTxSuccess(rate *float64) MetricDetail {
	const label = "Tx success (15m)"
	if rate == nil {
		return detail(label, notAvailable, neutralScore)
	}
	r := *rate
	value := fmt.Sprintf("%.1f%%", r)
	switch {
	case r >= 98:
		return detail(label, value, 100)
	case r >= 95:
		return detail(label, value, 70)
	case r >= 90:
		return detail(label, value, 50)
	default:
		return detail(label, value, 20)
	}
}

func ScoreLatency(medianMs *float64) MetricDetail {
	const label = "Median latency"
	if medianMs == nil {
		return detail(label, notAvailable, neutralScore)
	}
	ms := *medianMs
	value := fmt.Sprintf("%s ms", decimal.NewFromFloat(ms).Round(0).String())
	switch {
	case ms < 500:
		return detail(label, value, 100)
	case ms < 1200:
		return detail(label, value, 70)
	case ms < 2500:
		return detail(label, value, 40)
	default:
		return detail(label, value, 15)
	}
}

func ScoreAppErrors(count *int) MetricDetail {
	const label = "App errors (10m)"
	if count == nil {
		return detail(label, notAvailable, neutralScore)
	}
	c := *count
	value := fmt.Sprintf("%d", c)
	switch {
	case c <= 1:
		return detail(label, value, 100)
	case c <= 5:
		return detail(label, value, 70)
	case c <= 15:
		return detail(label, value, 40)
	default:
		return detail(label, value, 10)
	}
}

var technicalSummaries = map[State]string{
	StateGreen:  "RPC and transaction systems are stable.",
	StateYellow: "Some instability detected; monitor RPC and tx success.",
	StateRed:    "Critical reliability issues detected.",
}

func ScoreTechnicalHealth(in TechnicalInputs) Report {
	return compose([]weighted{
		{ScoreRpcSuccess(in.RpcSuccessRate), 0.35},
		{ScoreTxSuccess(in.TxSuccessRate), 0.3},
		{ScoreLatency(in.TxLatencyMedianMs), 0.2},
		{ScoreAppErrors(in.AppErrors), 0.15},
	}, technicalSummaries)
}
