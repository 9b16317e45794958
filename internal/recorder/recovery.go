package recorder

import (
	"context"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/recorder/interfaces"
	"os"
)

const (
	MsgMissed           = "Missed: process was not running at scheduled time"
	MsgRecordingCrashed = "Recording interrupted: process crashed during recording"
	MsgLocalFileMissing = "Local file missing during recovery"
)

type EntryProcessor interface {
	ProcessEntry(ctx context.Context, entry models.JournalEntry) error
}

// RecoveryReport summarizes one startup recovery pass.
type RecoveryReport struct {
	Inspected int
	Resumed   int
	Completed int
	Failed    int
}

// Recovery classifies entries left incomplete by a previous process and resumes the ones
// whose audio survived.
type Recovery struct {
	journal   interfaces.JournalInterface
	processor EntryProcessor
	logger    providers.Logger
}

func NewRecovery(journal interfaces.JournalInterface, processor EntryProcessor, logger providers.Logger) *Recovery {
	return &Recovery{journal: journal, processor: processor, logger: logger}
}

// Run handles every incomplete entry in order. A failing entry never stops the pass.
func (r *Recovery) Run(ctx context.Context) RecoveryReport {
	var report RecoveryReport

	incomplete := r.journal.GetIncomplete()
	if len(incomplete) == 0 {
		r.logger.Infof(providers.TypeRecovery, "No incomplete entries to recover")
		return report
	}
	r.logger.Infof(providers.TypeRecovery, "Found %d incomplete entries to recover", len(incomplete))

	for _, entry := range incomplete {
		report.Inspected++
		r.logger.Infof(providers.TypeRecovery, "Recovering entry %s in status %s", entry.Key, entry.Status)

		resume, ok := r.classify(&entry)
		if !ok {
			report.Failed++
			continue
		}
		if !resume {
			continue
		}

		report.Resumed++
		if err := r.processor.ProcessEntry(ctx, entry); err != nil {
			r.logger.Errorf(providers.TypeRecovery, "Recovery failed for entry %s: %s", entry.Key, err)
			report.Failed++
			continue
		}
		report.Completed++
	}

	r.logger.Infof(providers.TypeRecovery, "Recovery finished: %d inspected, %d resumed, %d completed, %d failed",
		report.Inspected, report.Resumed, report.Completed, report.Failed)
	return report
}

// classify moves entry to the status it resumes from. It returns ok=false when the entry was
// marked failed and resume=true when it should be handed to the processor.
func (r *Recovery) classify(entry *models.JournalEntry) (resume bool, ok bool) {
	switch entry.Status {
	case models.StatusScheduled:
		r.logger.Warnf(providers.TypeRecovery, "Scheduled entry %s missed while the process was down", entry.Key)
		r.markFailed(entry, MsgMissed)
		return false, false

	case models.StatusRecording:
		if !fileExists(entry.LocalPath) {
			r.logger.Warnf(providers.TypeRecovery, "Recording %s interrupted, no audio at %s", entry.Key, entry.LocalPath)
			r.markFailed(entry, MsgRecordingCrashed)
			return false, false
		}
		r.logger.Infof(providers.TypeRecovery, "Audio for %s found, resuming from recorded", entry.Key)
		r.reset(entry, models.StatusRecorded)
		return true, true

	case models.StatusRecorded, models.StatusUploading:
		if !fileExists(entry.LocalPath) {
			r.logger.Warnf(providers.TypeRecovery, "Audio for %s missing at %s", entry.Key, entry.LocalPath)
			r.markFailed(entry, MsgLocalFileMissing)
			return false, false
		}
		r.logger.Infof(providers.TypeRecovery, "Resuming upload of %s", entry.Key)
		r.reset(entry, models.StatusRecorded)
		return true, true

	case models.StatusUploaded:
		r.logger.Infof(providers.TypeRecovery, "Resuming metadata sync of %s", entry.Key)
		return true, true
	}

	return false, true
}

func (r *Recovery) reset(entry *models.JournalEntry, status models.JobStatus) {
	r.journal.UpdateEntry(entry.Key, models.EntryUpdate{Status: status})
	entry.Status = status
}

func (r *Recovery) markFailed(entry *models.JournalEntry, message string) {
	r.journal.UpdateEntry(entry.Key, models.EntryUpdate{Status: models.StatusFailed, ErrorMessage: message})
	entry.Status = models.StatusFailed
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
