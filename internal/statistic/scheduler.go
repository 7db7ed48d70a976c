package statistic

import (
	"context"
	"errors"
	"minelens/internal/providers"
	"minelens/internal/services"
	"minelens/internal/statistic/interfaces"
	"minelens/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler runs telemetry persistence and, when enabled, the periodic
// weighted-stake recompute.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	stake       services.StakeServiceInterface
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		if err := s.Persist(); err != nil {
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted telemetry to file %s", s.config.Persistence.FilePath)
	})

	if s.config.Recompute.Enabled && s.config.Recompute.Interval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Recompute.Interval), s.RunRecompute)
		s.logger.Infof(providers.TypeJob, "Scheduled weighted-stake recompute every %v", s.config.Recompute.Interval)
	}

	s.cron.Start()
}

// RunRecompute performs one scheduled recompute with a corrective write.
func (s *Scheduler) RunRecompute() {
	timeout := s.config.Recompute.Interval
	if timeout <= 0 {
		timeout = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Infof(providers.TypeJob, "Scheduled recompute started")
	_, err := s.stake.Recompute(ctx, false)
	if errors.Is(err, services.ErrJobRunning) {
		s.logger.Infof(providers.TypeJob, "Scheduled recompute skipped: a run is in flight")
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting telemetry: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, stake services.StakeServiceInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		stake:       stake,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
