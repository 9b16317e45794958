package internal

import (
	"context"
	"errors"
	"felixrec/internal/controllers"
	"felixrec/internal/providers"
	"felixrec/internal/recorder"
	"felixrec/internal/recorder/interfaces"
	"felixrec/internal/structures"
	"fmt"
	"maps"
	"net/http"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownGrace bounds how long shutdown waits for running recording jobs. Jobs still running
// after it are picked up by recovery on the next start.
const shutdownGrace = 10 * time.Second

type App struct {
	WebServer *http.Server

	conf      *structures.Config
	logger    providers.Logger
	lock      providers.LockProviderInterface
	scheduler interfaces.SchedulerInterface
	poller    *recorder.Poller
}

func NewApp(
	healthController *controllers.HealthController,
	router providers.RouterProviderInterface,
	scheduler interfaces.SchedulerInterface,
	poller *recorder.Poller,
	lock providers.LockProviderInterface,
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *App {
	// Inner mux: journal views
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}
	instrumentedAPI := providers.MetricsMiddleware(metrics, router.GetRoutes(), apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		lock:      lock,
		scheduler: scheduler,
		poller:    poller,
	}
}

// Run owns the data directory until ctx is cancelled or SIGINT/SIGTERM arrives: it restores
// the journal, starts the periodic tasks and the optional HTTP server, then shuts down in order.
func (a *App) Run(ctx context.Context) error {
	if err := a.lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := a.lock.Release(); err != nil {
			a.logger.Warnf(providers.TypeApp, "Failed to release %s: %s", a.lock.Path(), err)
		}
	}()

	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	a.logConfig()

	if err := a.scheduler.Restore(); err != nil {
		return fmt.Errorf("restore journal: %w", err)
	}
	a.scheduler.Init()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	if a.conf.WebServer.Enabled {
		go func() {
			a.logger.Infof(providers.TypeHttp, "Listening HTTP clients on %s", a.WebServer.Addr)
			if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	a.scheduler.Stop()

	if a.conf.WebServer.Enabled {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.WebServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Errorf(providers.TypeHttp, "HTTP shutdown error: %s", err)
		}
		cancel()
	}

	if !a.poller.WaitTimeout(shutdownGrace) {
		a.logger.Warnf(providers.TypeApp, "%d recording job(s) still running at exit, recovery will handle them", a.poller.InFlight())
	}

	if err := a.scheduler.Persist(); err != nil {
		return errors.Join(runErr, err)
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return runErr
}

func (a *App) logConfig() {
	values := providers.Redacted(a.conf)
	for _, key := range slices.Sorted(maps.Keys(values)) {
		a.logger.Infof(providers.TypeApp, "config %s=%v", key, values[key])
	}
}

// Close releases the log file.
func (a *App) Close() {
	a.logger.Close()
}
