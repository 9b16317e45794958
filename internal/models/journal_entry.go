package models

import (
	"fmt"
	"time"
)

const JournalVersion = 1

// DateLayout is the calendar day format used in journal keys.
const DateLayout = "2006-01-02"

type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRecording JobStatus = "recording"
	StatusRecorded  JobStatus = "recorded"
	StatusUploading JobStatus = "uploading"
	StatusUploaded  JobStatus = "uploaded"
	StatusDbSynced  JobStatus = "db_synced"
	StatusFailed    JobStatus = "failed"
)

// AllStatuses lists every job status in pipeline order, failed last.
var AllStatuses = []JobStatus{
	StatusScheduled,
	StatusRecording,
	StatusRecorded,
	StatusUploading,
	StatusUploaded,
	StatusDbSynced,
	StatusFailed,
}

// IsTerminal reports whether no further phase will run for the status.
func (s JobStatus) IsTerminal() bool {
	return s == StatusDbSynced || s == StatusFailed
}

func (s JobStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ScheduleSnapshot keeps everything needed to resume a capture without a second schedule lookup.
type ScheduleSnapshot struct {
	UserID       string `json:"userId"`
	StationID    int64  `json:"stationId"`
	ProgramName  string `json:"programName"`
	DurationMins int    `json:"durationMins"`
	StreamURL    string `json:"streamUrl"`
}

func (s ScheduleSnapshot) DurationSecs() int {
	return s.DurationMins * 60
}

type JournalEntry struct {
	Key          string           `json:"key"`
	ScheduleID   int64            `json:"scheduleId"`
	Date         string           `json:"date"`
	Status       JobStatus        `json:"status"`
	LocalPath    string           `json:"localPath"`
	RemoteKey    string           `json:"remoteKey"`
	RecordingID  *int64           `json:"recordingId"`
	Schedule     ScheduleSnapshot `json:"schedule"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	RetryCount   int              `json:"retryCount"`
}

func (e JournalEntry) HasRecordingID() bool {
	return e.RecordingID != nil && *e.RecordingID > 0
}

// Clone returns a copy that shares no pointers with e.
func (e JournalEntry) Clone() JournalEntry {
	if e.RecordingID != nil {
		id := *e.RecordingID
		e.RecordingID = &id
	}
	return e
}

// EntryUpdate holds the mutable fields of a journal entry. Zero values leave the field unchanged.
// Paths and keys are fixed when the entry is created.
type EntryUpdate struct {
	Status       JobStatus
	RecordingID  int64
	ErrorMessage string
	RetryCount   int
}

// Apply copies the non-zero fields of u into e.
func (u EntryUpdate) Apply(e *JournalEntry) {
	if u.Status != "" {
		e.Status = u.Status
	}
	if u.RecordingID > 0 {
		id := u.RecordingID
		e.RecordingID = &id
	}
	if u.ErrorMessage != "" {
		e.ErrorMessage = u.ErrorMessage
	}
	if u.RetryCount > 0 {
		e.RetryCount = u.RetryCount
	}
}

type JournalData struct {
	Version int                      `json:"version"`
	Entries map[string]*JournalEntry `json:"entries"`
}

func NewJournalData() *JournalData {
	return &JournalData{
		Version: JournalVersion,
		Entries: make(map[string]*JournalEntry),
	}
}

// MakeKey builds the dedup key of a schedule on a calendar day.
func MakeKey(scheduleID int64, date string) string {
	return fmt.Sprintf("%d_%s", scheduleID, date)
}
