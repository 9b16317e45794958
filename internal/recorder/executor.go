package recorder

import (
	"context"
	"errors"
	"felixrec/internal/journal"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/recorder/interfaces"
	"felixrec/internal/services"
	"felixrec/internal/structures"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

const audioDirName = "audio"

// Executor drives one journal entry through capture, upload and metadata sync.
// Every transition is persisted before the next phase starts, so a crash at any point
// leaves an entry that ProcessEntry can resume.
type Executor struct {
	journal  interfaces.JournalInterface
	api      services.ControlAPIInterface
	store    services.ObjectStoreInterface
	capturer services.CaptureInterface
	retrier  *Retrier
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	audioDir string
	location *time.Location
}

func NewExecutor(
	conf *structures.Config,
	journal interfaces.JournalInterface,
	api services.ControlAPIInterface,
	store services.ObjectStoreInterface,
	capturer services.CaptureInterface,
	retrier *Retrier,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Executor {
	return &Executor{
		journal:  journal,
		api:      api,
		store:    store,
		capturer: capturer,
		retrier:  retrier,
		logger:   logger,
		metrics:  metrics,
		audioDir: filepath.Join(conf.Recorder.DataDir, audioDirName),
		location: conf.Location(),
	}
}

// Execute records schedule for the day of at unless the journal already tracks it.
// at is the poll tick time, so the dedup key names the same day the tick filtered on.
func (e *Executor) Execute(ctx context.Context, schedule models.Schedule, at time.Time) error {
	now := at.In(e.location)
	date := now.Format(models.DateLayout)

	if e.journal.HasEntry(schedule.ID, date) {
		e.logger.Debugf(providers.TypeExecutor, "Schedule %d already in journal for %s, skipping", schedule.ID, date)
		return nil
	}

	filename := services.GenerateFilename(schedule.ProgramName, now)
	entry := models.JournalEntry{
		Key:        models.MakeKey(schedule.ID, date),
		ScheduleID: schedule.ID,
		Date:       date,
		Status:     models.StatusScheduled,
		LocalPath:  filepath.Join(e.audioDir, filename),
		RemoteKey:  services.RecordingKey(schedule.UserID, filename),
		Schedule:   schedule.Snapshot(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := e.journal.AddEntry(entry); err != nil {
		if errors.Is(err, journal.ErrEntryExists) {
			e.logger.Debugf(providers.TypeExecutor, "Schedule %d already in journal for %s, skipping", schedule.ID, date)
			return nil
		}
		return err
	}
	e.metrics.IncJobTransition(string(models.StatusScheduled))

	e.logger.Infof(providers.TypeExecutor, "Executing recording %s: %q for %d min", entry.Key, schedule.ProgramName, schedule.DurationMins)
	return e.ProcessEntry(ctx, entry)
}

// ProcessEntry resumes entry from its current status. On failure the entry is marked
// failed and the error is returned.
func (e *Executor) ProcessEntry(ctx context.Context, entry models.JournalEntry) error {
	err := e.process(ctx, &entry)
	if err == nil {
		return nil
	}

	e.fail(ctx, entry, err)
	return err
}

func (e *Executor) process(ctx context.Context, entry *models.JournalEntry) error {
	if entry.Status == models.StatusScheduled {
		if err := e.record(ctx, entry); err != nil {
			return err
		}
	}

	if entry.Status == models.StatusRecorded || entry.Status == models.StatusUploading {
		if err := e.upload(ctx, entry); err != nil {
			return err
		}
	}

	if entry.Status == models.StatusUploaded {
		if err := e.sync(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// record runs the capture and the best-effort registration side by side and waits for both.
func (e *Executor) record(ctx context.Context, entry *models.JournalEntry) error {
	e.transition(entry, models.StatusRecording)
	start := time.Now()

	e.logger.Infof(providers.TypeExecutor, "Starting recording %s into %s", entry.Key, entry.LocalPath)

	var recordingID int64
	var g errgroup.Group
	g.Go(func() error {
		return e.capturer.Capture(ctx, entry.Schedule.StreamURL, entry.Schedule.DurationSecs(), entry.LocalPath)
	})
	g.Go(func() error {
		metadata := e.metadata(*entry, models.RecordingRecording, 0)
		id := TryOperation(ctx, e.retrier, "create recording", int64(0), func(ctx context.Context) (int64, error) {
			return e.api.CreateRecording(ctx, metadata)
		})
		if id > 0 {
			e.journal.UpdateEntry(entry.Key, models.EntryUpdate{RecordingID: id})
			e.logger.Infof(providers.TypeExecutor, "Recording %s registered with ID %d", entry.Key, id)
			recordingID = id
		}
		return nil
	})

	err := g.Wait()
	if recordingID > 0 {
		entry.RecordingID = &recordingID
	}
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	e.metrics.ObservePhaseDuration("capture", time.Since(start))
	e.transition(entry, models.StatusRecorded)
	e.logger.Infof(providers.TypeExecutor, "Recording %s completed", entry.Key)
	return nil
}

func (e *Executor) upload(ctx context.Context, entry *models.JournalEntry) error {
	info, err := os.Stat(entry.LocalPath)
	if err != nil {
		return fmt.Errorf("local file: %w", err)
	}

	e.transition(entry, models.StatusUploading)
	start := time.Now()
	e.logger.Infof(providers.TypeExecutor, "Uploading %s (%d bytes) to %s", entry.Key, info.Size(), entry.RemoteKey)

	err = RetryErr(ctx, e.retrier, "upload", func(ctx context.Context) error {
		return e.store.UploadFile(ctx, entry.LocalPath, entry.RemoteKey)
	})
	if err != nil {
		return err
	}

	e.metrics.ObservePhaseDuration("upload", time.Since(start))
	e.transition(entry, models.StatusUploaded)
	e.logger.Infof(providers.TypeExecutor, "Uploaded %s to %s", entry.Key, entry.RemoteKey)
	return nil
}

// sync reports the finished recording: the registered record is completed, or a completed
// record is created when registration never succeeded.
func (e *Executor) sync(ctx context.Context, entry *models.JournalEntry) error {
	info, err := os.Stat(entry.LocalPath)
	if err != nil {
		return fmt.Errorf("local file: %w", err)
	}
	size := info.Size()
	start := time.Now()

	if entry.HasRecordingID() {
		id := *entry.RecordingID
		err = RetryErr(ctx, e.retrier, "complete recording", func(ctx context.Context) error {
			return e.api.UpdateRecordingStatus(ctx, id, models.StatusUpdate{
				Status:        models.RecordingCompleted,
				FileSizeBytes: &size,
			})
		})
		if err != nil {
			return err
		}
	} else {
		metadata := e.metadata(*entry, models.RecordingCompleted, size)
		id, err := Retry(ctx, e.retrier, "create recording", func(ctx context.Context) (int64, error) {
			return e.api.CreateRecording(ctx, metadata)
		})
		if err != nil {
			return err
		}
		e.journal.UpdateEntry(entry.Key, models.EntryUpdate{RecordingID: id})
		entry.RecordingID = &id
	}

	e.metrics.ObservePhaseDuration("sync", time.Since(start))
	e.transition(entry, models.StatusDbSynced)
	e.logger.Infof(providers.TypeExecutor, "Recording job %s fully completed (recording %d)", entry.Key, *entry.RecordingID)
	return nil
}

func (e *Executor) fail(ctx context.Context, entry models.JournalEntry, cause error) {
	message := cause.Error()
	e.logger.Errorf(providers.TypeExecutor, "Recording job %s failed in status %s: %s", entry.Key, entry.Status, message)

	e.journal.UpdateEntry(entry.Key, models.EntryUpdate{
		Status:       models.StatusFailed,
		ErrorMessage: message,
		RetryCount:   entry.RetryCount + 1,
	})

	if entry.HasRecordingID() {
		id := *entry.RecordingID
		TryOperation(ctx, e.retrier, "report failure", struct{}{}, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, e.api.UpdateRecordingStatus(ctx, id, models.StatusUpdate{
				Status:       models.RecordingFailed,
				ErrorMessage: message,
			})
		})
	}
}

func (e *Executor) transition(entry *models.JournalEntry, status models.JobStatus) {
	if _, ok := e.journal.UpdateEntry(entry.Key, models.EntryUpdate{Status: status}); !ok {
		e.logger.Warnf(providers.TypeExecutor, "Entry %s vanished from journal while moving to %s", entry.Key, status)
	}
	entry.Status = status
}

func (e *Executor) metadata(entry models.JournalEntry, status models.RecordingStatus, size int64) models.RecordingMetadata {
	return models.RecordingMetadata{
		UserID:        entry.Schedule.UserID,
		ScheduleID:    entry.ScheduleID,
		StationID:     entry.Schedule.StationID,
		ProgramName:   entry.Schedule.ProgramName,
		RecordedAt:    entry.CreatedAt.Format(time.RFC3339),
		DurationSecs:  entry.Schedule.DurationSecs(),
		FileSizeBytes: size,
		AudioFilePath: entry.RemoteKey,
		Status:        status,
	}
}
