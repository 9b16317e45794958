package recorder

import (
	"context"
	"felixrec/internal/providers"
	"felixrec/internal/recorder/interfaces"
	"felixrec/internal/structures"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"
)

const pollSpec = "* * * * *"

// Scheduler owns the periodic poll and clean tasks and the journal lifecycle around them.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	journal  interfaces.JournalInterface
	recovery *Recovery
	poller   *Poller
	cleaner  *Cleaner
	cron     *cron.Cron
	opsMu    sync.Mutex
	running  *atomic.Bool

	ctx          context.Context
	cancel       context.CancelFunc
	startupClean *time.Timer
}

func (s *Scheduler) Init() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(cron.WithLocation(s.config.Location()))

	if _, err := s.cron.AddFunc(pollSpec, s.pollTick); err != nil {
		s.logger.Fatalf(providers.TypeApp, "Invalid poll schedule: %s", err)
	}

	interval := s.config.Recorder.CleanInterval
	if interval <= 0 {
		interval = time.Hour
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.cleanTick); err != nil {
		s.logger.Fatalf(providers.TypeApp, "Invalid clean schedule: %s", err)
	}

	s.cron.Start()
	s.startupClean = time.AfterFunc(s.config.Recorder.CleanStartupDelay, s.cleanTick)

	s.logger.Infof(providers.TypeApp, "Scheduler started: polling every minute (window %d min), cleaning every %s (retention %d days)",
		s.config.Recorder.ScheduleWindowMins, interval, s.config.Recorder.RetentionDays)
}

// pollTick errors are logged and counted by the poller; the next tick runs regardless.
func (s *Scheduler) pollTick() {
	_, _ = s.poller.Poll(s.ctx)
}

func (s *Scheduler) cleanTick() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if !s.running.Load() {
		return
	}
	s.cleaner.Clean()
}

// Stop prevents new ticks and waits for running tick bodies. Executors already launched by
// the poller keep running; Poller.Wait observes them.
func (s *Scheduler) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	if s.startupClean != nil {
		s.startupClean.Stop()
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Infof(providers.TypeApp, "Scheduler stopped")
}

// Restore loads the journal and recovers work interrupted by the previous process.
func (s *Scheduler) Restore() error {
	if err := s.journal.Load(); err != nil {
		return err
	}
	s.recovery.Run(context.Background())
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting journal...")
	if err := s.journal.Flush(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting journal: %s", err)
		return err
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	journal interfaces.JournalInterface,
	recovery *Recovery,
	poller *Poller,
	cleaner *Cleaner,
) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		journal:  journal,
		recovery: recovery,
		poller:   poller,
		cleaner:  cleaner,
		running:  atomic.NewBool(false),
	}
}
