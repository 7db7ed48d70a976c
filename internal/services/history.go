package services

import (
	"context"
	"minelens/internal/hashpower"
	"minelens/internal/providers"
	"minelens/internal/structures"
	"sync"
	"time"
)

const (
	minRangeHours = 1
	maxRangeHours = 720
	minStepHours  = 1
	maxStepHours  = 24
	// maxHistorySteps caps the replay grid.
	maxHistorySteps = 300
)

// HistoryPoint is the network total with ts treated as now.
type HistoryPoint struct {
	Ts          int64  `json:"ts"`
	BaseHp      uint64 `json:"baseHp,string"`
	BuffHp      uint64 `json:"buffHp,string"`
	EffectiveHp uint64 `json:"effectiveHp,string"`
}

type History struct {
	RangeHours int            `json:"rangeHours"`
	StepHours  int            `json:"stepHours"`
	NowTs      int64          `json:"nowTs"`
	Malformed  int            `json:"malformedSkipped"`
	Points     []HistoryPoint `json:"points"`
}

type HistoryServiceInterface interface {
	ComputeHistory(ctx context.Context, rangeHours, stepHours int) (*History, error)
}

type historySlot struct {
	rangeHours, stepHours int
	storedAt              time.Time
	history               *History
}

// HistoryService replays stored position windows over a time grid. It keeps
// the last result in a single slot keyed by (range, step).
type HistoryService struct {
	loader *SnapshotLoader
	logger providers.Logger
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	slot *historySlot
}

func NewHistoryService(loader *SnapshotLoader, logger providers.Logger, conf *structures.Config) HistoryServiceInterface {
	return newHistoryService(loader, logger, conf.History.CacheTTL, time.Now)
}

func newHistoryService(loader *SnapshotLoader, logger providers.Logger, ttl time.Duration, now func() time.Time) *HistoryService {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &HistoryService{loader: loader, logger: logger, ttl: ttl, now: now}
}

// ClampHistoryParams bounds range to [1, 720] hours and step to [1, 24] hours.
func ClampHistoryParams(rangeHours, stepHours int) (int, int) {
	return min(max(rangeHours, minRangeHours), maxRangeHours), min(max(stepHours, minStepHours), maxStepHours)
}

// HistorySteps is min(ceil(range/step)+1, 300) for already clamped params.
func HistorySteps(rangeHours, stepHours int) int {
	return min((rangeHours+stepHours-1)/stepHours+1, maxHistorySteps)
}

func (s *HistoryService) ComputeHistory(ctx context.Context, rangeHours, stepHours int) (*History, error) {
	rangeHours, stepHours = ClampHistoryParams(rangeHours, stepHours)

	if h := s.cached(rangeHours, stepHours); h != nil {
		return h, nil
	}

	snap, err := s.loader.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	params := hashpower.ParamsFromConfig(snap.Config)
	levels := hashpower.LevelsByOwner(snap.Profiles)

	steps := HistorySteps(rangeHours, stepHours)
	start := snap.NowTs - int64(rangeHours)*3600
	history := &History{
		RangeHours: rangeHours,
		StepHours:  stepHours,
		NowTs:      snap.NowTs,
		Malformed:  snap.Malformed,
		Points:     make([]HistoryPoint, 0, steps),
	}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts := start + int64(i)*int64(stepHours)*3600
		agg, err := hashpower.NetworkTotals(snap.Positions, levels, ts, params)
		if err != nil {
			return nil, err
		}
		history.Points = append(history.Points, HistoryPoint{
			Ts:          ts,
			BaseHp:      agg.BaseSum,
			BuffHp:      agg.BuffSum,
			EffectiveHp: agg.EffectiveSum,
		})
	}

	s.logger.Debugf(providers.TypeApp, "History recomputed: range=%dh step=%dh points=%d", rangeHours, stepHours, steps)
	s.store(rangeHours, stepHours, history)
	return history, nil
}

func (s *HistoryService) cached(rangeHours, stepHours int) *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil || s.slot.rangeHours != rangeHours || s.slot.stepHours != stepHours {
		return nil
	}
	if s.now().Sub(s.slot.storedAt) >= s.ttl {
		s.slot = nil
		return nil
	}
	return s.slot.history
}

func (s *HistoryService) store(rangeHours, stepHours int, h *History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot = &historySlot{rangeHours: rangeHours, stepHours: stepHours, storedAt: s.now(), history: h}
}
