package hashpower

import (
	"bytes"
	"minelens/internal/models"
	"sort"
)

// Params carries the config-derived values the engine needs.
type Params struct {
	SecondsPerDay   uint64
	NetworkHpActive uint64
}

func ParamsFromConfig(cfg *models.ProtocolConfig) Params {
	return Params{SecondsPerDay: cfg.SecondsPerDay, NetworkHpActive: cfg.NetworkHpActive}
}

// PositionHp is one position's contribution at a given instant.
type PositionHp struct {
	Active  bool
	RigType RigType
	BuffBps uint64
	BaseHp  uint64
	Buffed  uint64
}

// ResolveRigType prefers the stored rig type when the account is scaled and
// falls back to the window-length classification otherwise.
func ResolveRigType(p *models.MinerPosition, secondsPerDay uint64) RigType {
	if p.HpScaled {
		return RigType(p.RigType)
	}
	return RigTypeFromDuration(p.StartTs, p.EndTs, secondsPerDay)
}

// PositionHashpower evaluates a position as if nowTs were the current time.
// Inactive positions contribute zero.
func PositionHashpower(p *models.MinerPosition, nowTs int64, secondsPerDay uint64) (PositionHp, error) {
	out := PositionHp{RigType: ResolveRigType(p, secondsPerDay)}
	if !p.ActiveAt(nowTs) {
		return out, nil
	}
	out.Active = true
	out.BaseHp = p.Hp

	if p.BuffActiveAt(nowTs) {
		out.BuffBps = BuffBonusBps(out.RigType, p.BuffLevel)
	}
	buffed, err := applyBps(p.Hp, out.BuffBps, "buffed hp")
	if err != nil {
		return out, err
	}
	out.Buffed = buffed
	return out, nil
}

// EffectiveHp is the single-position view: base, buffed and buffed scaled by
// the owner's level bonus.
func EffectiveHp(p *models.MinerPosition, level uint8, nowTs int64, secondsPerDay uint64) (base, buffed, effective uint64, err error) {
	hp, err := PositionHashpower(p, nowTs, secondsPerDay)
	if err != nil {
		return 0, 0, 0, err
	}
	effective, err = applyBps(hp.Buffed, LevelBonusBps(level), "effective hp")
	if err != nil {
		return 0, 0, 0, err
	}
	return hp.BaseHp, hp.Buffed, effective, nil
}

type OwnerHp struct {
	Owner     models.PublicKey `json:"owner"`
	Level     uint8            `json:"level"`
	Positions int              `json:"positions"`
	BaseHp    uint64           `json:"baseHp,string"`
	BuffedHp  uint64           `json:"buffedHp,string"`
	Effective uint64           `json:"effectiveHp,string"`
}

type Aggregate struct {
	BaseSum      uint64 `json:"baseHp,string"`
	BuffSum      uint64 `json:"buffedHp,string"`
	EffectiveSum uint64 `json:"effectiveHp,string"`

	// LocalEffectiveSum is the replayed sum before the config floor is applied.
	LocalEffectiveSum uint64    `json:"localEffectiveHp,string"`
	Floor             uint64    `json:"networkHpActive,string"`
	Owners            []OwnerHp `json:"owners,omitempty"`
}

// MaxOwnerSharePct is the largest single-owner share of the locally replayed
// effective sum, in percent. Nil when nothing is active.
func (a *Aggregate) MaxOwnerSharePct() *float64 {
	if a.LocalEffectiveSum == 0 || len(a.Owners) == 0 {
		return nil
	}
	share := float64(a.Owners[0].Effective) / float64(a.LocalEffectiveSum) * 100
	return &share
}

// LevelsByOwner indexes profile levels. Later profiles win, so callers pass
// V1 profiles before V2 ones.
func LevelsByOwner(profiles []models.UserProfile) map[models.PublicKey]uint8 {
	levels := make(map[models.PublicKey]uint8, len(profiles))
	for i := range profiles {
		level := profiles[i].Level
		if level == 0 {
			level = 1
		}
		levels[profiles[i].Owner] = level
	}
	return levels
}

// NetworkAggregate groups active positions by owner, applies each owner's
// level bonus once to the owner's buffed sum, and sums across owners. The
// reported effective sum never drops below params.NetworkHpActive.
func NetworkAggregate(positions []models.MinerPosition, profiles []models.UserProfile, nowTs int64, params Params) (*Aggregate, error) {
	return aggregate(positions, LevelsByOwner(profiles), nowTs, params, true)
}

// NetworkTotals is NetworkAggregate without the per-owner breakdown, for
// callers that evaluate many instants against the same level index.
func NetworkTotals(positions []models.MinerPosition, levels map[models.PublicKey]uint8, nowTs int64, params Params) (*Aggregate, error) {
	return aggregate(positions, levels, nowTs, params, false)
}

func aggregate(positions []models.MinerPosition, levels map[models.PublicKey]uint8, nowTs int64, params Params, breakdown bool) (*Aggregate, error) {
	type ownerSums struct {
		base, buffed uint64
		positions    int
	}
	owners := make(map[models.PublicKey]*ownerSums)

	for i := range positions {
		hp, err := PositionHashpower(&positions[i], nowTs, params.SecondsPerDay)
		if err != nil {
			return nil, err
		}
		if !hp.Active {
			continue
		}
		sums, ok := owners[positions[i].Owner]
		if !ok {
			sums = &ownerSums{}
			owners[positions[i].Owner] = sums
		}
		if sums.base, err = addAmount(sums.base, hp.BaseHp, "owner base hp"); err != nil {
			return nil, err
		}
		if sums.buffed, err = addAmount(sums.buffed, hp.Buffed, "owner buffed hp"); err != nil {
			return nil, err
		}
		sums.positions++
	}

	agg := &Aggregate{Floor: params.NetworkHpActive}
	if breakdown {
		agg.Owners = make([]OwnerHp, 0, len(owners))
	}

	for owner, sums := range owners {
		level, ok := levels[owner]
		if !ok {
			level = 1
		}
		effective, err := applyBps(sums.buffed, LevelBonusBps(level), "owner effective hp")
		if err != nil {
			return nil, err
		}
		if agg.BaseSum, err = addAmount(agg.BaseSum, sums.base, "network base hp"); err != nil {
			return nil, err
		}
		if agg.BuffSum, err = addAmount(agg.BuffSum, sums.buffed, "network buffed hp"); err != nil {
			return nil, err
		}
		if agg.LocalEffectiveSum, err = addAmount(agg.LocalEffectiveSum, effective, "network effective hp"); err != nil {
			return nil, err
		}
		if breakdown {
			agg.Owners = append(agg.Owners, OwnerHp{
				Owner:     owner,
				Level:     level,
				Positions: sums.positions,
				BaseHp:    sums.base,
				BuffedHp:  sums.buffed,
				Effective: effective,
			})
		}
	}

	agg.EffectiveSum = max(agg.LocalEffectiveSum, params.NetworkHpActive)

	if breakdown {
		sort.Slice(agg.Owners, func(i, j int) bool {
			if agg.Owners[i].Effective != agg.Owners[j].Effective {
				return agg.Owners[i].Effective > agg.Owners[j].Effective
			}
			return bytes.Compare(agg.Owners[i].Owner[:], agg.Owners[j].Owner[:]) < 0
		})
	}
	return agg, nil
}
