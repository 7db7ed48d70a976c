package internal

import (
	"minelens/internal/health"
	"minelens/internal/ledger"
	"minelens/internal/providers"
	"minelens/internal/structures"
	"time"
)

// NewTelemetryRecorder builds the shared sample buffers from the configured
// windows. Unset windows keep their defaults.
func NewTelemetryRecorder(conf *structures.Config) *health.Recorder {
	windows := health.DefaultWindows()
	if conf.Telemetry.RpcWindow > 0 {
		windows.Rpc = conf.Telemetry.RpcWindow
	}
	if conf.Telemetry.TxWindow > 0 {
		windows.Tx = conf.Telemetry.TxWindow
	}
	if conf.Telemetry.ErrorWindow > 0 {
		windows.Errors = conf.Telemetry.ErrorWindow
	}
	return health.NewRecorder(windows, time.Now)
}

// NewLedgerSource connects the RPC client and reports every call attempt to
// both the technical-health recorder and Prometheus.
func NewLedgerSource(conf *structures.Config, logger providers.Logger, recorder *health.Recorder, metrics providers.MetricsProviderInterface) (ledger.Source, error) {
	client, err := ledger.NewRpcClient(conf, logger, recorder, metrics)
	if err != nil {
		return nil, err
	}
	return client, nil
}
