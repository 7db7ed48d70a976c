package controllers

import (
	"errors"
	"io"
	"minelens/internal/health"
	"minelens/internal/providers"
	"minelens/internal/services"
	"minelens/internal/storage"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const maxRunsLimit = 100

type AdminController struct {
	logger providers.Logger
	stake  services.StakeServiceInterface
	health services.HealthServiceInterface
	cache  providers.CacheProviderInterface
}

type recomputeResponse struct {
	Run   *storage.RecomputeRun `json:"run,omitempty"`
	Error string                `json:"error,omitempty"`
}

func NewAdminController(logger providers.Logger, stake services.StakeServiceInterface, health services.HealthServiceInterface, cache providers.CacheProviderInterface) *AdminController {
	return &AdminController{
		logger: logger,
		stake:  stake,
		health: health,
		cache:  cache,
	}
}

func (ac *AdminController) Recompute(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if raw := r.URL.Query().Get("dryRun"); raw != "" {
		v, err := cast.ToBoolE(raw)
		if err != nil {
			writeError(w, r, ac.logger, newBadRequest("invalid dryRun: "+raw))
			return
		}
		dryRun = v
	}

	run, err := ac.stake.Recompute(r.Context(), dryRun)
	if !dryRun && run != nil && run.Status == storage.RunStatusWritten {
		ac.cache.Del(cacheKeyWeightedStake)
	}
	if err != nil {
		if run == nil {
			writeError(w, r, ac.logger, err)
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			ac.logger.Errorf(providers.TypeJob, "Recompute run %d failed: %v", run.ID, err)
		}
		writeJSON(w, status, recomputeResponse{Run: run, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, recomputeResponse{Run: run})
}

func (ac *AdminController) Runs(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	limit = min(max(limit, 1), maxRunsLimit)

	runs, err := ac.stake.RecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	if runs == nil {
		runs = []*storage.RecomputeRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Economic scores the supplied sources. An empty body derives everything
// it can and leaves the rest neutral.
func (ac *AdminController) Economic(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var src health.EconomicSources
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, ac.logger, newBadRequest("invalid body: "+err.Error()))
		return
	}

	report, err := ac.health.Economic(r.Context(), src)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (ac *AdminController) Technical(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.health.Technical())
}

func (ac *AdminController) Telemetry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var event services.TelemetryEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, r, ac.logger, newBadRequest("invalid body: "+err.Error()))
		return
	}
	if err := ac.health.RecordTelemetry(event); err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (ac *AdminController) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := ac.health.Alerts(r.Context())
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	if alerts == nil {
		alerts = []services.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (ac *AdminController) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, ac.logger, newBadRequest("id is required"))
		return
	}
	if err := ac.health.ResolveAlert(r.Context(), id); err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "resolved": true})
}
