package hashpower

type RigType uint8

const (
	RigWeekly   RigType = 0
	RigBiweekly RigType = 1
	RigQuadweek RigType = 2
)

// RigTypeFromDuration classifies a position by its window length rounded to
// whole days: 7 days is tier 0, 14 is tier 1, 28 is tier 2. Every other
// length, and a non-positive day length, falls back to tier 0.
func RigTypeFromDuration(startTs, endTs int64, secondsPerDay uint64) RigType {
	if secondsPerDay == 0 {
		return RigWeekly
	}
	var duration uint64
	if endTs > startTs {
		duration = uint64(endTs - startTs)
	}

	days := duration / secondsPerDay
	if rem := duration % secondsPerDay; rem >= secondsPerDay-rem {
		days++
	}

	switch days {
	case 7:
		return RigWeekly
	case 14:
		return RigBiweekly
	case 28:
		return RigQuadweek
	default:
		return RigWeekly
	}
}

func BuffBonusBps(rig RigType, buffLevel uint8) uint64 {
	switch rig {
	case RigWeekly:
		if buffLevel >= 1 {
			return 100
		}
		return 0
	case RigBiweekly:
		switch {
		case buffLevel >= 3:
			return 350
		case buffLevel == 2:
			return 200
		case buffLevel == 1:
			return 100
		}
		return 0
	case RigQuadweek:
		switch {
		case buffLevel >= 3:
			return 500
		case buffLevel == 2:
			return 300
		case buffLevel == 1:
			return 150
		}
		return 0
	}
	return 0
}

// LevelBonusBps is capped at 1000 from level 6 upward. Level 0 is treated as level 1.
func LevelBonusBps(level uint8) uint64 {
	switch level {
	case 0, 1:
		return 0
	case 2:
		return 160
	case 3:
		return 340
	case 4:
		return 550
	case 5:
		return 780
	default:
		return 1000
	}
}

// DurationMultiplierBps weights a stake by lock length. Non-standard
// durations receive the top multiplier.
func DurationMultiplierBps(durationDays uint16) uint64 {
	switch durationDays {
	case 7:
		return 10_000
	case 14:
		return 11_000
	case 30:
		return 12_500
	default:
		return 15_000
	}
}
