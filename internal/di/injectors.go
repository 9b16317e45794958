//go:build wireinject
// +build wireinject

package di

import (
	"felixrec/internal"
	"felixrec/internal/controllers"
	"felixrec/internal/journal"
	"felixrec/internal/providers"
	"felixrec/internal/recorder"
	"felixrec/internal/recorder/interfaces"
	"felixrec/internal/services"
	"felixrec/internal/structures"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewLockProvider,

		journal.NewJournal,
		journal.NewZstdCompressor,
		journal.NewArchive,
		wire.Bind(new(interfaces.JournalInterface), new(*journal.Journal)),
		wire.Bind(new(interfaces.JournalReader), new(*journal.Journal)),
		wire.Bind(new(interfaces.ArchiveInterface), new(*journal.Archive)),

		services.NewControlAPI,
		services.NewR2Storage,
		services.NewFfmpegCapture,

		recorder.NewRetrier,
		recorder.NewExecutor,
		recorder.NewRecovery,
		recorder.NewPoller,
		recorder.NewCleaner,
		recorder.NewScheduler,
		wire.Bind(new(recorder.EntryProcessor), new(*recorder.Executor)),
		wire.Bind(new(recorder.ScheduleExecutor), new(*recorder.Executor)),

		controllers.NewHealthController,
		controllers.NewJobsController,
		wire.Bind(new(controllers.InFlightCounter), new(*recorder.Poller)),
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
