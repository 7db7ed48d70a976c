package controllers

import (
	"fmt"
	"minelens/internal/health"
	"minelens/internal/services"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	stake     services.StakeServiceInterface
	health    services.HealthServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status           string       `json:"status"`
	Uptime           string       `json:"uptime"`
	UptimeSeconds    float64      `json:"uptime_seconds"`
	RecomputeRunning bool         `json:"recompute_running"`
	TechnicalState   health.State `json:"technical_state"`
	TechnicalScore   float64      `json:"technical_score"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	technical := hc.health.Technical()
	resp := healthResponse{
		Status:           "ok",
		Uptime:           formatDuration(uptime),
		UptimeSeconds:    uptime.Seconds(),
		RecomputeRunning: hc.stake.IsRunning(),
		TechnicalState:   technical.State,
		TechnicalScore:   technical.Score,
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(stake services.StakeServiceInterface, health services.HealthServiceInterface) *HealthController {
	return &HealthController{
		stake:     stake,
		health:    health,
		startTime: time.Now(),
	}
}
