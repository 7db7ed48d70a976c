package services

import (
	"context"
	"errors"
	"fmt"
	"minelens/internal/health"
	"minelens/internal/providers"
	"strings"
	"sync"
	"time"
)

// resolvedRetention is how long alert resolutions are kept.
const resolvedRetention = 30 * 24 * time.Hour

var ErrUnknownTelemetryKind = errors.New("unknown telemetry kind")

type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarn     AlertLevel = "WARN"
	AlertCritical AlertLevel = "CRITICAL"
)

type Alert struct {
	ID         string     `json:"id"`
	Level      AlertLevel `json:"level"`
	CreatedAt  time.Time  `json:"createdAt"`
	Message    string     `json:"message"`
	Details    string     `json:"details,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// TelemetryEvent is one client-reported sample. Kind is "tx" or "app_error".
type TelemetryEvent struct {
	Kind       string  `json:"kind"`
	Action     string  `json:"action"`
	Ok         bool    `json:"ok"`
	DurationMs float64 `json:"durationMs"`
	Message    string  `json:"message"`
}

// EconomicReport pairs the score with the inputs it was computed from.
type EconomicReport struct {
	health.Report
	Inputs health.EconomicInputs `json:"inputs"`
}

type TechnicalReport struct {
	health.Report
	Inputs health.TechnicalInputs `json:"inputs"`
}

// AlertStore persists alert resolutions.
type AlertStore interface {
	ResolveAlert(ctx context.Context, id string, at time.Time) error
	ResolvedAlerts(ctx context.Context) (map[string]time.Time, error)
	PruneResolvedAlerts(ctx context.Context, cutoff time.Time) (int64, error)
}

type HealthServiceInterface interface {
	Economic(ctx context.Context, src health.EconomicSources) (*EconomicReport, error)
	Technical() *TechnicalReport
	RecordTelemetry(event TelemetryEvent) error
	Alerts(ctx context.Context) ([]Alert, error)
	ResolveAlert(ctx context.Context, id string) error
}

type HealthService struct {
	recorder *health.Recorder
	network  NetworkServiceInterface
	alerts   AlertStore
	logger   providers.Logger
	now      func() time.Time

	mu           sync.Mutex
	lastEconomic *health.Report
}

func NewHealthService(recorder *health.Recorder, network NetworkServiceInterface, alerts AlertStore, logger providers.Logger) HealthServiceInterface {
	return &HealthService{
		recorder: recorder,
		network:  network,
		alerts:   alerts,
		logger:   logger,
		now:      time.Now,
	}
}

// Economic scores the supplied flows. Without a supplied concentration it is
// taken from the live network aggregate; if that read fails the metric stays
// neutral.
func (s *HealthService) Economic(ctx context.Context, src health.EconomicSources) (*EconomicReport, error) {
	if src.ConcentrationPct == nil && s.network != nil {
		report, err := s.network.ComputeNetworkAggregate(ctx)
		if err != nil {
			s.logger.Warnf(providers.TypeApp, "Concentration unavailable, scoring it neutral: %v", err)
		} else {
			src.ConcentrationPct = report.MaxOwnerSharePct
		}
	}

	inputs := health.DeriveEconomicInputs(src)
	report := health.ScoreEconomicHealth(inputs)

	s.mu.Lock()
	s.lastEconomic = &report
	s.mu.Unlock()

	return &EconomicReport{Report: report, Inputs: inputs}, nil
}

func (s *HealthService) Technical() *TechnicalReport {
	inputs := s.recorder.TechnicalInputs()
	return &TechnicalReport{Report: health.ScoreTechnicalHealth(inputs), Inputs: inputs}
}

func (s *HealthService) RecordTelemetry(event TelemetryEvent) error {
	switch event.Kind {
	case "tx":
		s.recorder.RecordTx(event.Action, event.Ok, event.DurationMs)
	case "app_error":
		s.recorder.RecordAppError(event.Message)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTelemetryKind, event.Kind)
	}
	return nil
}

// Alerts lists one alert per degraded report: the live technical score and
// the last economic evaluation, if any.
func (s *HealthService) Alerts(ctx context.Context) ([]Alert, error) {
	now := s.now().UTC()
	resolved, err := s.alerts.ResolvedAlerts(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0, 2)
	if a, ok := alertFor("technical", s.Technical().Report, now); ok {
		alerts = append(alerts, a)
	}
	s.mu.Lock()
	economic := s.lastEconomic
	s.mu.Unlock()
	if economic != nil {
		if a, ok := alertFor("economic", *economic, now); ok {
			alerts = append(alerts, a)
		}
	}

	for i := range alerts {
		if at, ok := resolved[alerts[i].ID]; ok {
			alerts[i].Resolved = true
			alerts[i].ResolvedAt = &at
		}
	}
	return alerts, nil
}

func (s *HealthService) ResolveAlert(ctx context.Context, id string) error {
	now := s.now()
	if err := s.alerts.ResolveAlert(ctx, id, now); err != nil {
		return err
	}
	pruned, err := s.alerts.PruneResolvedAlerts(ctx, now.Add(-resolvedRetention))
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Failed to prune resolved alerts: %v", err)
	} else if pruned > 0 {
		s.logger.Debugf(providers.TypeApp, "Pruned %d resolved alerts", pruned)
	}
	s.logger.Infof(providers.TypeApp, "Alert %s resolved", id)
	return nil
}

// AlertID is stable for a report kind and state over one UTC day.
func AlertID(kind string, state health.State, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", kind, state, at.UTC().Format("20060102"))
}

func alertFor(kind string, report health.Report, now time.Time) (Alert, bool) {
	var level AlertLevel
	switch report.State {
	case health.StateYellow:
		level = AlertWarn
	case health.StateRed:
		level = AlertCritical
	default:
		return Alert{}, false
	}

	var degraded []string
	for _, d := range report.Details {
		if d.Score < 50 {
			degraded = append(degraded, fmt.Sprintf("%s: %s", d.Label, d.Value))
		}
	}
	return Alert{
		ID:        AlertID(kind, report.State, now),
		Level:     level,
		CreatedAt: now,
		Message:   fmt.Sprintf("%s health %s (score %.1f): %s", kind, report.State, report.Score, report.Summary),
		Details:   strings.Join(degraded, "; "),
	}, true
}
