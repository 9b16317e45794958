package recorder

import (
	"felixrec/internal/journal"
	"felixrec/internal/models"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(f *fixture, j *journal.Journal) *Scheduler {
	recovery := NewRecovery(j, f.executor, f.logger)
	poller := NewPoller(f.conf, f.api, j, f.executor, f.logger, f.metrics)
	cleaner := NewCleaner(f.conf, j, f.archive, f.logger)
	cleaner.now = func() time.Time { return cleanNow }
	return NewScheduler(f.conf, f.logger, j, recovery, poller, cleaner).(*Scheduler)
}

func TestScheduler_RestoreRecoversPreviousRun(t *testing.T) {
	f := newFixture(t)
	missed := f.seedEntry(t, 1, models.StatusScheduled, false)
	uploaded := f.seedEntry(t, 2, models.StatusUploaded, true)

	restarted := journal.NewJournal(f.conf, f.logger, f.metrics)
	f.executor.journal = restarted
	s := newTestScheduler(f, restarted)

	require.NoError(t, s.Restore())

	stored, ok := restarted.GetEntry(missed.Key)
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, MsgMissed, stored.ErrorMessage)

	stored, ok = restarted.GetEntry(uploaded.Key)
	require.True(t, ok)
	assert.Equal(t, models.StatusDbSynced, stored.Status)
}

func TestScheduler_Persist(t *testing.T) {
	f := newFixture(t)
	f.seedEntry(t, 1, models.StatusDbSynced, false)
	require.NoError(t, os.Remove(f.journal.Path()))

	s := newTestScheduler(f, f.journal)
	require.NoError(t, s.Persist())

	data, err := journal.ReadFile(f.journal.Path())
	require.NoError(t, err)
	assert.Len(t, data.Entries, 1)
}

func TestScheduler_InitAndStopAreIdempotent(t *testing.T) {
	f := newFixture(t)
	s := newTestScheduler(f, f.journal)

	s.Init()
	first := s.cron
	s.Init()
	assert.Same(t, first, s.cron)
	assert.True(t, s.running.Load())

	s.Stop()
	s.Stop()
	assert.False(t, s.running.Load())
	assert.Error(t, s.ctx.Err())
}

func TestScheduler_CleanTickOnlyWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.seedAged(t, 1, models.StatusDbSynced, 10*24*time.Hour)
	s := newTestScheduler(f, f.journal)

	s.cleanTick()
	assert.Len(t, f.journal.GetAllEntries(), 1)

	s.Init()
	defer s.Stop()
	s.cleanTick()
	assert.Empty(t, f.journal.GetAllEntries())
}
