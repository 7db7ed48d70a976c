package ledger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"minelens/internal/providers"
	"minelens/internal/structures"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// setWeightedTotalInstruction is the admin instruction the relay signs and submits.
const setWeightedTotalInstruction = "admin_set_staking_weighted_total"

// RelayWriter hands the corrective write to an external signer relay that
// holds the admin key. It never retries.
type RelayWriter struct {
	url    string
	token  string
	http   *http.Client
	logger providers.Logger
}

type relayRequest struct {
	Instruction string            `json:"instruction"`
	Args        map[string]string `json:"args"`
}

type relayResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

// NewAggregateWriter returns a relay-backed writer, or a disabled one when no
// relay is configured.
func NewAggregateWriter(conf *structures.Config, logger providers.Logger) AggregateWriter {
	if conf.Recompute.SignerURL == "" {
		logger.Infof(providers.TypeApp, "Signer relay not configured, corrective writes disabled")
		return &disabledWriter{}
	}
	timeout := conf.Recompute.WriteTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RelayWriter{
		url:    conf.Recompute.SignerURL,
		token:  conf.Recompute.SignerToken,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *RelayWriter) WriteAggregate(ctx context.Context, value uint64) (*WriteResult, error) {
	body, err := json.Marshal(&relayRequest{
		Instruction: setWeightedTotalInstruction,
		Args:        map[string]string{"newTotal": strconv.FormatUint(value, 10)},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: signer relay: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("%w: signer relay: read body: %v", ErrUpstreamUnavailable, err)
	}

	var out relayResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: signer relay status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, msg)
	}
	if out.Signature == "" {
		return nil, fmt.Errorf("%w: signer relay returned no signature", ErrUpstreamUnavailable)
	}

	w.logger.Infof(providers.TypeLedger, "Submitted %s(%d): %s", setWeightedTotalInstruction, value, out.Signature)
	return &WriteResult{Signature: out.Signature}, nil
}

type disabledWriter struct{}

func (d *disabledWriter) WriteAggregate(_ context.Context, _ uint64) (*WriteResult, error) {
	return nil, ErrWriterDisabled
}
