package services

import (
	"context"
	"errors"
	"fmt"
	"minelens/internal/hashpower"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/providers"
	"minelens/internal/storage"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// WeightedStakeReport is a read-only weighted-stake pass next to the value
// currently stored in the config account.
type WeightedStakeReport struct {
	hashpower.StakeTotals
	Malformed     int    `json:"malformedSkipped"`
	OnChainTotal  uint64 `json:"onChainTotal,string"`
	InSync        bool   `json:"inSync"`
	ConfigVersion string `json:"configVersion"`
}

// RunStore keeps the recompute audit log.
type RunStore interface {
	InsertRecomputeRun(ctx context.Context, run *storage.RecomputeRun) error
	RecentRecomputeRuns(ctx context.Context, limit int) ([]*storage.RecomputeRun, error)
}

type StakeServiceInterface interface {
	ComputeWeightedStakeTotal(ctx context.Context) (*WeightedStakeReport, error)
	Recompute(ctx context.Context, dryRun bool) (*storage.RecomputeRun, error)
	RecentRuns(ctx context.Context, limit int) ([]*storage.RecomputeRun, error)
	IsRunning() bool
}

type StakeService struct {
	loader  *SnapshotLoader
	writer  ledger.AggregateWriter
	runs    RunStore
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
	running atomic.Bool
}

func NewStakeService(loader *SnapshotLoader, writer ledger.AggregateWriter, runs RunStore, logger providers.Logger, metrics providers.MetricsProviderInterface) StakeServiceInterface {
	return &StakeService{
		loader:  loader,
		writer:  writer,
		runs:    runs,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *StakeService) IsRunning() bool {
	return s.running.Load()
}

func (s *StakeService) ComputeWeightedStakeTotal(ctx context.Context) (*WeightedStakeReport, error) {
	var (
		cfg       *models.ProtocolConfig
		positions []models.StakingPosition
		malformed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cfg, err = s.loader.LoadConfig(gctx)
		return err
	})
	g.Go(func() (err error) {
		positions, malformed, err = s.loader.ScanStaking(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals, err := hashpower.SumWeightedStake(positions)
	if err != nil {
		return nil, err
	}
	return &WeightedStakeReport{
		StakeTotals:   totals,
		Malformed:     malformed,
		OnChainTotal:  cfg.StakingWeightedTotal,
		InSync:        cfg.StakingWeightedTotal == totals.TotalWeighted,
		ConfigVersion: cfg.Version.String(),
	}, nil
}

// Recompute sums weighted stake and, unless dryRun, submits the total in one
// write. A failed write is recorded and returned, never retried. Every run
// lands in the audit log.
func (s *StakeService) Recompute(ctx context.Context, dryRun bool) (*storage.RecomputeRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrJobRunning
	}
	defer s.running.Store(false)

	run := &storage.RecomputeRun{StartedAt: s.now(), DryRun: dryRun}
	err := s.recompute(ctx, run)
	if err != nil {
		run.Error = err.Error()
		if run.Status == "" {
			run.Status = storage.RunStatusFailed
		}
	}
	run.FinishedAt = s.now()
	s.metrics.IncRecomputeRuns(run.Status)

	// the audit insert must land even when the request context is gone
	if aerr := s.runs.InsertRecomputeRun(context.WithoutCancel(ctx), run); aerr != nil {
		s.logger.Errorf(providers.TypeJob, "Failed to record recompute run: %v", aerr)
	}

	switch {
	case err != nil && run.Status == storage.RunStatusDisabled:
		s.logger.Warnf(providers.TypeJob, "Recompute computed total %d but no signer is configured", run.Total)
	case err != nil:
		s.logger.Errorf(providers.TypeJob, "Recompute failed: %v", err)
	default:
		s.logger.Infof(providers.TypeJob, "Recompute %s: total=%d counted=%d skippedZero=%d malformed=%d signature=%q",
			run.Status, run.Total, run.Counted, run.SkippedZero, run.Malformed, run.Signature)
	}
	return run, err
}

func (s *StakeService) recompute(ctx context.Context, run *storage.RecomputeRun) error {
	positions, malformed, err := s.loader.ScanStaking(ctx)
	if err != nil {
		return err
	}
	run.Malformed = malformed

	totals, err := hashpower.SumWeightedStake(positions)
	if err != nil {
		return err
	}
	run.Total = totals.TotalWeighted
	run.Counted = totals.Counted
	run.SkippedZero = totals.SkippedZero
	s.metrics.SetWeightedTotal(totals.TotalWeighted)

	if run.DryRun {
		run.Status = storage.RunStatusDryRun
		return nil
	}

	res, err := s.writer.WriteAggregate(ctx, totals.TotalWeighted)
	if errors.Is(err, ledger.ErrWriterDisabled) {
		run.Status = storage.RunStatusDisabled
		return err
	}
	if err != nil {
		return fmt.Errorf("write weighted total %d: %w", totals.TotalWeighted, err)
	}
	run.Status = storage.RunStatusWritten
	run.Signature = res.Signature
	return nil
}

func (s *StakeService) RecentRuns(ctx context.Context, limit int) ([]*storage.RecomputeRun, error) {
	return s.runs.RecentRecomputeRuns(ctx, limit)
}
