package controllers

import (
	"felixrec/internal/recorder/interfaces"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// InFlightCounter reports how many recording jobs are currently executing.
type InFlightCounter interface {
	InFlight() int
}

type HealthController struct {
	journal   interfaces.JournalReader
	jobs      InFlightCounter
	startTime time.Time
}

type healthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	InFlight      int            `json:"in_flight"`
	Entries       int            `json:"entries"`
	ByStatus      map[string]int `json:"by_status"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		InFlight:      hc.jobs.InFlight(),
		ByStatus:      make(map[string]int),
	}
	for status, count := range hc.journal.CountByStatus() {
		resp.ByStatus[string(status)] = count
		resp.Entries += count
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(gson)
}

func NewHealthController(journal interfaces.JournalReader, jobs InFlightCounter) *HealthController {
	return &HealthController{
		journal:   journal,
		jobs:      jobs,
		startTime: time.Now(),
	}
}
