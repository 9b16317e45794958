package models

type RecordingStatus string

const (
	RecordingPending   RecordingStatus = "pending"
	RecordingRecording RecordingStatus = "recording"
	RecordingCompleted RecordingStatus = "completed"
	RecordingFailed    RecordingStatus = "failed"
)

type STTStatus string

const (
	STTNone       STTStatus = "none"
	STTProcessing STTStatus = "processing"
	STTCompleted  STTStatus = "completed"
	STTFailed     STTStatus = "failed"
)

func (s STTStatus) Valid() bool {
	switch s {
	case STTNone, STTProcessing, STTCompleted, STTFailed:
		return true
	}
	return false
}

// RecordingMetadata is the body of POST /recordings.
type RecordingMetadata struct {
	UserID        string          `json:"user_id"`
	ScheduleID    int64           `json:"schedule_id"`
	StationID     int64           `json:"station_id"`
	ProgramName   string          `json:"program_name"`
	RecordedAt    string          `json:"recorded_at"`
	DurationSecs  int             `json:"duration_secs"`
	FileSizeBytes int64           `json:"file_size_bytes"`
	AudioFilePath string          `json:"audio_file_path"`
	Status        RecordingStatus `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
}

type StatusUpdate struct {
	Status        RecordingStatus `json:"status"`
	FileSizeBytes *int64          `json:"file_size_bytes,omitempty"`
	ErrorMessage  string          `json:"error_message,omitempty"`
}

type STTUpdate struct {
	Status       STTStatus `json:"stt_status"`
	TextPath     string    `json:"stt_text_path,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

type CreatedRecording struct {
	Message     string `json:"message"`
	RecordingID int64  `json:"recording_id"`
}
