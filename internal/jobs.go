package internal

import (
	"context"
	"minelens/internal/providers"
	"minelens/internal/services"
	"minelens/internal/storage"
)

// Jobs exposes the one-shot operations the command line runs without
// starting the HTTP server.
type Jobs struct {
	stake   services.StakeServiceInterface
	history services.HistoryServiceInterface
	network services.NetworkServiceInterface
	store   *storage.SQLiteStorage
	logger  providers.Logger
}

func NewJobs(stake services.StakeServiceInterface, history services.HistoryServiceInterface, network services.NetworkServiceInterface, store *storage.SQLiteStorage, logger providers.Logger) *Jobs {
	return &Jobs{
		stake:   stake,
		history: history,
		network: network,
		store:   store,
		logger:  logger,
	}
}

func (j *Jobs) Recompute(ctx context.Context, dryRun bool) (*storage.RecomputeRun, error) {
	return j.stake.Recompute(ctx, dryRun)
}

func (j *Jobs) ReplayHistory(ctx context.Context, rangeHours, stepHours int) (*services.History, error) {
	rangeHours, stepHours = services.ClampHistoryParams(rangeHours, stepHours)
	return j.history.ComputeHistory(ctx, rangeHours, stepHours)
}

func (j *Jobs) NetworkAggregate(ctx context.Context) (*services.NetworkReport, error) {
	return j.network.ComputeNetworkAggregate(ctx)
}

func (j *Jobs) Close() {
	if err := j.store.Close(); err != nil {
		j.logger.Errorf(providers.TypeApp, "Closing storage: %s", err)
	}
	j.logger.Close()
}
