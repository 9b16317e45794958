package controllers

import (
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/recorder/interfaces"
	"net/http"
)

// JobsController exposes read-only views of the recording journal.
type JobsController struct {
	logger  providers.Logger
	journal interfaces.JournalReader
}

type jobsResponse struct {
	Count   int                   `json:"count"`
	Entries []models.JournalEntry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewJobsController(logger providers.Logger, journal interfaces.JournalReader) *JobsController {
	return &JobsController{
		logger:  logger,
		journal: journal,
	}
}

// List returns every journal entry, or only those in ?status= when given.
func (jc *JobsController) List(w http.ResponseWriter, r *http.Request) {
	var entries []models.JournalEntry

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.JobStatus(raw)
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown status " + raw})
			return
		}
		entries = jc.journal.GetEntriesByStatus(status)
	} else {
		entries = jc.journal.GetAllEntries()
	}

	if entries == nil {
		entries = []models.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, jobsResponse{Count: len(entries), Entries: entries})
}

// Get returns the entry named by ?key=.
func (jc *JobsController) Get(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}

	entry, ok := jc.journal.GetEntry(key)
	if !ok {
		jc.logger.Debugf(providers.TypeHttp, "Journal entry %s not found", key)
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
