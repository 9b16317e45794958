package recorder

import (
	"context"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/recorder/interfaces"
	"felixrec/internal/services"
	"felixrec/internal/structures"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const clockLayout = "15:04"

type ScheduleExecutor interface {
	Execute(ctx context.Context, schedule models.Schedule, at time.Time) error
}

// PollWindow is the query sent to the Control API for one tick.
type PollWindow struct {
	TimeFrom string
	TimeTo   string
	Day      int
	Date     string
}

// NewPollWindow computes the trailing window ending at now, in now's location.
func NewPollWindow(now time.Time, window time.Duration) PollWindow {
	return PollWindow{
		TimeFrom: now.Add(-window).Format(clockLayout),
		TimeTo:   now.Format(clockLayout),
		Day:      int(now.Weekday()),
		Date:     now.Format(models.DateLayout),
	}
}

// Poller discovers due schedules and launches an executor for each new one.
type Poller struct {
	api      services.ControlAPIInterface
	journal  interfaces.JournalReader
	executor ScheduleExecutor
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	window   time.Duration
	location *time.Location
	now      func() time.Time

	wg       sync.WaitGroup
	inFlight *atomic.Int32
}

func NewPoller(
	conf *structures.Config,
	api services.ControlAPIInterface,
	journal interfaces.JournalReader,
	executor ScheduleExecutor,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Poller {
	return &Poller{
		api:      api,
		journal:  journal,
		executor: executor,
		logger:   logger,
		metrics:  metrics,
		window:   time.Duration(conf.Recorder.ScheduleWindowMins) * time.Minute,
		location: conf.Location(),
		now:      time.Now,
		inFlight: atomic.NewInt32(0),
	}
}

// Poll runs one discovery tick and returns how many executors it launched. Executors
// outlive ctx: cancelling the tick never interrupts a capture.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	now := p.now().In(p.location)
	w := NewPollWindow(now, p.window)
	p.logger.Debugf(providers.TypePoller, "Polling for schedules between %s and %s (day %d)", w.TimeFrom, w.TimeTo, w.Day)

	schedules, err := p.api.FetchPendingSchedules(ctx, w.TimeFrom, w.TimeTo, w.Day)
	if err != nil {
		p.metrics.IncPollErrors()
		p.logger.Errorf(providers.TypePoller, "Poll failed: %s", err)
		return 0, fmt.Errorf("fetch pending schedules: %w", err)
	}
	if len(schedules) == 0 {
		p.logger.Debugf(providers.TypePoller, "No pending schedules")
		return 0, nil
	}

	fresh := make([]models.Schedule, 0, len(schedules))
	for _, s := range schedules {
		if !s.RunsOn(w.Day) {
			p.logger.Debugf(providers.TypePoller, "Schedule %d does not run on day %d, skipping", s.ID, w.Day)
			continue
		}
		if p.journal.HasEntry(s.ID, w.Date) {
			continue
		}
		fresh = append(fresh, s)
	}

	if len(fresh) == 0 {
		p.logger.Debugf(providers.TypePoller, "All %d schedules already in journal", len(schedules))
		return 0, nil
	}
	p.logger.Infof(providers.TypePoller, "Found %d new schedule(s) to record (%d filtered)", len(fresh), len(schedules)-len(fresh))

	execCtx := context.WithoutCancel(ctx)
	for _, s := range fresh {
		p.launch(execCtx, s, now)
	}
	return len(fresh), nil
}

func (p *Poller) launch(ctx context.Context, schedule models.Schedule, at time.Time) {
	p.wg.Add(1)
	p.metrics.SetInFlightJobs(int(p.inFlight.Inc()))

	go func() {
		defer func() {
			p.metrics.SetInFlightJobs(int(p.inFlight.Dec()))
			p.wg.Done()
		}()
		if err := p.executor.Execute(ctx, schedule, at); err != nil {
			p.logger.Errorf(providers.TypePoller, "Recording execution failed for schedule %d: %s", schedule.ID, err)
		}
	}()
}

// InFlight returns the number of executors still running.
func (p *Poller) InFlight() int {
	return int(p.inFlight.Load())
}

// Wait blocks until every launched executor has returned.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// WaitTimeout is Wait bounded by d. It reports whether all executors finished.
func (p *Poller) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
