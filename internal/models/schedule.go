package models

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Schedule is a due schedule as returned by the Control API, joined with its station and owner.
type Schedule struct {
	ID           int64  `json:"id"`
	UserID       string `json:"user_id"`
	StationID    int64  `json:"station_id"`
	ProgramName  string `json:"program_name"`
	DaysOfWeek   string `json:"days_of_week"`
	StartTime    string `json:"start_time"`
	DurationMins int    `json:"duration_mins"`
	IsActive     bool   `json:"is_active"`
	StreamURL    string `json:"stream_url"`
	StationName  string `json:"station_name"`
	Email        string `json:"email"`
}

// RunsOn reports whether days_of_week contains day (0 = Sunday).
// An empty or unparseable list is left to the server-side filter.
func (s Schedule) RunsOn(day int) bool {
	raw := strings.TrimSpace(s.DaysOfWeek)
	if raw == "" {
		return true
	}
	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return true
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func (s Schedule) Snapshot() ScheduleSnapshot {
	return ScheduleSnapshot{
		UserID:       s.UserID,
		StationID:    s.StationID,
		ProgramName:  s.ProgramName,
		DurationMins: s.DurationMins,
		StreamURL:    s.StreamURL,
	}
}

type PendingSchedules struct {
	Schedules []Schedule `json:"schedules"`
	Count     int        `json:"count"`
}
