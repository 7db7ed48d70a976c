package controllers

import (
	"context"
	"errors"
	"minelens/internal/hashpower"
	"minelens/internal/ledger"
	"minelens/internal/models"
	"minelens/internal/providers"
	"minelens/internal/services"
	"net/http"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type errorResponse struct {
	Error string `json:"error"`
}

// badRequest marks an error caused by the request itself.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func newBadRequest(msg string) error { return &badRequest{msg: msg} }

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var br *badRequest
	switch {
	case errors.As(err, &br), errors.Is(err, services.ErrUnknownTelemetryKind):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrJobRunning):
		return http.StatusConflict
	case errors.Is(err, services.ErrConfigMissing), errors.Is(err, ledger.ErrWriterDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrUpstreamUnavailable), errors.Is(err, models.ErrMalformedAccount):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, hashpower.ErrAmountOverflow):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, r *http.Request, logger providers.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func ownerParam(r *http.Request) (models.PublicKey, error) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		return models.PublicKey{}, newBadRequest("owner is required")
	}
	owner, err := models.PublicKeyFromBase58(raw)
	if err != nil {
		return models.PublicKey{}, newBadRequest("invalid owner: " + err.Error())
	}
	return owner, nil
}
