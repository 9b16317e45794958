package controllers

import (
	"felixrec/internal/journal"
	"felixrec/internal/models"
	"felixrec/internal/structures"
	"felixrec/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedInFlight int

func (n fixedInFlight) InFlight() int { return int(n) }

func newTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	conf := &structures.Config{Recorder: structures.RecorderConfig{DataDir: t.TempDir()}}
	j := journal.NewJournal(conf, &testutil.MockLogger{}, testutil.NewMockMetrics())
	require.NoError(t, j.Load())
	return j
}

func addEntry(t *testing.T, j *journal.Journal, id int64, status models.JobStatus) models.JournalEntry {
	t.Helper()
	entry := models.JournalEntry{
		ScheduleID: id,
		Date:       "2026-10-17",
		Status:     status,
		CreatedAt:  time.Date(2026, 10, 17, 1, int(id), 0, 0, time.UTC),
		Schedule:   models.ScheduleSnapshot{UserID: "u1", ProgramName: "Show", DurationMins: 30},
	}
	require.NoError(t, j.AddEntry(entry))
	entry.Key = models.MakeKey(id, entry.Date)
	return entry
}
