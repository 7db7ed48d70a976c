//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"minelens/internal"
	"minelens/internal/controllers"
	"minelens/internal/health"
	"minelens/internal/ledger"
	"minelens/internal/providers"
	"minelens/internal/services"
	"minelens/internal/statistic"
	"minelens/internal/storage"
	"minelens/internal/structures"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,

	internal.NewTelemetryRecorder,
	internal.NewLedgerSource,
	ledger.NewAddresses,
	ledger.NewAggregateWriter,

	storage.NewStorageProvider,
	wire.Bind(new(services.RunStore), new(*storage.SQLiteStorage)),
	wire.Bind(new(services.AlertStore), new(*storage.SQLiteStorage)),

	services.NewSnapshotLoader,
	services.NewNetworkService,
	services.NewHistoryService,
	services.NewStakeService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		coreSet,
		providers.NewInstrumentedCacheProvider,
		services.NewHealthService,

		statistic.NewZstdCompressor,
		wire.Bind(new(statistic.TelemetryStore), new(*health.Recorder)),
		statistic.NewFileManager,
		statistic.NewScheduler,

		controllers.NewApiController,
		controllers.NewAdminController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}

func InitJobs(cfg *structures.CliFlags) (*internal.Jobs, error) {

	wire.Build(
		coreSet,
		internal.NewJobs,
	)

	return nil, nil
}
