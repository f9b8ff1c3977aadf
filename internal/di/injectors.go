//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"tsd/internal"
	"tsd/internal/controllers"
	"tsd/internal/providers"
	"tsd/internal/services"
	"tsd/internal/snapshot"
	"tsd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewStoreProvider,
		providers.NewTransferProvider,
		wire.Bind(new(providers.TransferProviderInterface), new(*providers.BalanceBook)),
		wire.Bind(new(services.TransferServiceInterface), new(*providers.BalanceBook)),
		providers.NewEventProvider,
		wire.Bind(new(providers.EventProviderInterface), new(*providers.EventProvider)),
		wire.Bind(new(services.EventEmitterInterface), new(*providers.EventProvider)),
		providers.NewAuthProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		services.NewSystemClock,
		services.NewOpsLock,
		services.NewLedgerService,
		services.NewAdminService,
		services.NewMigrationService,

		snapshot.NewZstdCompressor,
		snapshot.NewFileManager,
		snapshot.NewArchive,
		snapshot.NewScheduler,

		controllers.NewStreamController,
		controllers.NewAdminController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
