package recorder

import (
	"felixrec/internal/journal"
	"felixrec/internal/models"
	"felixrec/internal/structures"
	"felixrec/internal/testutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// execAt is 10:00 on Saturday 2026-10-17 in Seoul.
var execAt = time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC)

type fixture struct {
	conf     *structures.Config
	journal  *journal.Journal
	archive  *journal.Archive
	api      *testutil.MockControlAPI
	store    *testutil.MockObjectStore
	capturer *testutil.MockCapturer
	sleeper  *testutil.NoSleep
	logger   *testutil.MockLogger
	metrics  *testutil.MockMetrics
	retrier  *Retrier
	executor *Executor
}

func testConfig(dir string) *structures.Config {
	return &structures.Config{
		Recorder: structures.RecorderConfig{
			DataDir:            dir,
			Timezone:           "Asia/Seoul",
			RetentionDays:      3,
			ScheduleWindowMins: 5,
			FfmpegPath:         "ffmpeg",
			CleanInterval:      time.Hour,
			CleanStartupDelay:  time.Hour,
			MaxRetries:         5,
			RetryBaseDelay:     time.Second,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		conf:     testConfig(t.TempDir()),
		api:      &testutil.MockControlAPI{},
		store:    &testutil.MockObjectStore{},
		capturer: &testutil.MockCapturer{},
		sleeper:  &testutil.NoSleep{},
		logger:   &testutil.MockLogger{},
		metrics:  testutil.NewMockMetrics(),
	}
	f.journal = journal.NewJournal(f.conf, f.logger, f.metrics)
	require.NoError(t, f.journal.Load())
	f.archive = journal.NewArchive(f.conf, &testutil.MockCompressor{}, f.logger)

	f.retrier = NewRetrier(f.conf, f.logger, f.metrics)
	f.retrier.Sleep = f.sleeper.Sleep
	f.executor = NewExecutor(f.conf, f.journal, f.api, f.store, f.capturer, f.retrier, f.logger, f.metrics)
	return f
}

func testSchedule(id int64) models.Schedule {
	return models.Schedule{
		ID:           id,
		UserID:       "user-1",
		StationID:    3,
		ProgramName:  "Morning Show",
		DaysOfWeek:   "[0,1,2,3,4,5,6]",
		StartTime:    "10:00",
		DurationMins: 60,
		IsActive:     true,
		StreamURL:    "http://stream.example.com/live",
	}
}

// seedEntry stores an entry in the given status; withFile creates its audio file.
func (f *fixture) seedEntry(t *testing.T, id int64, status models.JobStatus, withFile bool) models.JournalEntry {
	t.Helper()
	localPath := filepath.Join(f.conf.Recorder.DataDir, audioDirName, "seed_"+models.MakeKey(id, "2026-10-17")+".mp3")
	entry := models.JournalEntry{
		Key:        models.MakeKey(id, "2026-10-17"),
		ScheduleID: id,
		Date:       "2026-10-17",
		Status:     status,
		LocalPath:  localPath,
		RemoteKey:  "recordings/user-1/" + filepath.Base(localPath),
		Schedule:   testSchedule(id).Snapshot(),
	}
	if withFile {
		require.NoError(t, os.MkdirAll(filepath.Dir(localPath), 0755))
		require.NoError(t, os.WriteFile(localPath, []byte("ID3-seeded-audio"), 0644))
	}
	require.NoError(t, f.journal.AddEntry(entry))
	return entry
}

func (f *fixture) status(t *testing.T, key string) models.JobStatus {
	t.Helper()
	entry, ok := f.journal.GetEntry(key)
	require.True(t, ok, "entry %s must exist", key)
	return entry.Status
}
