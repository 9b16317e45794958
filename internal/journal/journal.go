package journal

import (
	"errors"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const FileName = "journal.json"

var ErrEntryExists = errors.New("journal entry already exists")

// Journal is the durable record of every recording job. All mutations are flushed to disk
// before the call returns; the file is replaced atomically.
type Journal struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	data    *models.JournalData
	path    string
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewJournal(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Journal {
	return &Journal{
		data:    models.NewJournalData(),
		path:    filepath.Join(conf.Recorder.DataDir, FileName),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (j *Journal) Path() string {
	return j.path
}

// Load replaces the in-memory state with the file contents. A missing file starts an empty
// journal and writes it; an unreadable one is moved aside and replaced by an empty journal.
func (j *Journal) Load() error {
	data, err := ReadFile(j.path)
	switch {
	case err == nil:
		j.mu.Lock()
		j.data = data
		j.mu.Unlock()
		j.logger.Infof(providers.TypeJournal, "Loaded %d journal entries from %s", len(data.Entries), j.path)
		j.reportCounts()
		return nil
	case errors.Is(err, os.ErrNotExist):
		j.logger.Infof(providers.TypeJournal, "No journal at %s, starting empty", j.path)
	default:
		j.logger.Warnf(providers.TypeJournal, "Journal %s is unreadable, starting empty: %s", j.path, err)
		corrupt := fmt.Sprintf("%s.corrupt-%d", j.path, j.now().Unix())
		if renameErr := os.Rename(j.path, corrupt); renameErr != nil {
			j.logger.Warnf(providers.TypeJournal, "Failed to preserve unreadable journal: %s", renameErr)
		}
	}

	j.mu.Lock()
	j.data = models.NewJournalData()
	j.mu.Unlock()

	if err = os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	return j.Flush()
}

// ReadFile parses a journal file without taking ownership of it.
func ReadFile(path string) (*models.JournalData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data models.JournalData
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse journal: %w", err)
	}
	if data.Entries == nil {
		data.Entries = make(map[string]*models.JournalEntry)
	}
	for key, entry := range data.Entries {
		if entry == nil {
			delete(data.Entries, key)
			continue
		}
		entry.Key = key
	}
	data.Version = models.JournalVersion
	return &data, nil
}

func (j *Journal) HasEntry(scheduleID int64, date string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, ok := j.data.Entries[models.MakeKey(scheduleID, date)]
	return ok
}

func (j *Journal) GetEntry(key string) (models.JournalEntry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	entry, ok := j.data.Entries[key]
	if !ok {
		return models.JournalEntry{}, false
	}
	return entry.Clone(), true
}

// AddEntry stores a new entry under its key. The membership check and the insert happen under
// one lock, so two callers racing on the same key cannot both succeed.
func (j *Journal) AddEntry(entry models.JournalEntry) error {
	if entry.Key == "" {
		entry.Key = models.MakeKey(entry.ScheduleID, entry.Date)
	}
	now := j.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	j.mu.Lock()
	if _, ok := j.data.Entries[entry.Key]; ok {
		j.mu.Unlock()
		return fmt.Errorf("%s: %w", entry.Key, ErrEntryExists)
	}
	stored := entry.Clone()
	j.data.Entries[entry.Key] = &stored
	j.mu.Unlock()

	j.persist()
	return nil
}

// UpdateEntry applies upd and refreshes UpdatedAt. Unknown keys are reported and ignored.
func (j *Journal) UpdateEntry(key string, upd models.EntryUpdate) (models.JournalEntry, bool) {
	j.mu.Lock()
	entry, ok := j.data.Entries[key]
	if !ok {
		j.mu.Unlock()
		j.logger.Warnf(providers.TypeJournal, "Update of unknown journal entry %s ignored", key)
		return models.JournalEntry{}, false
	}
	upd.Apply(entry)
	entry.UpdatedAt = j.now()
	result := entry.Clone()
	j.mu.Unlock()

	if upd.Status != "" {
		j.metrics.IncJobTransition(string(upd.Status))
	}
	j.persist()
	return result, true
}

func (j *Journal) RemoveEntry(key string) {
	j.mu.Lock()
	if _, ok := j.data.Entries[key]; !ok {
		j.mu.Unlock()
		return
	}
	delete(j.data.Entries, key)
	j.mu.Unlock()

	j.persist()
}

func (j *Journal) GetEntriesByStatus(status models.JobStatus) []models.JournalEntry {
	return j.collect(func(e *models.JournalEntry) bool { return e.Status == status })
}

// GetIncomplete returns entries that still have a phase to run.
func (j *Journal) GetIncomplete() []models.JournalEntry {
	return j.collect(func(e *models.JournalEntry) bool { return !e.Status.IsTerminal() })
}

func (j *Journal) GetAllEntries() []models.JournalEntry {
	return j.collect(func(*models.JournalEntry) bool { return true })
}

func (j *Journal) CountByStatus() map[models.JobStatus]int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return countByStatus(j.data)
}

// collect returns matching entries ordered by creation time, oldest first.
func (j *Journal) collect(match func(*models.JournalEntry) bool) []models.JournalEntry {
	j.mu.RLock()
	result := make([]models.JournalEntry, 0, len(j.data.Entries))
	for _, entry := range j.data.Entries {
		if match(entry) {
			result = append(result, entry.Clone())
		}
	}
	j.mu.RUnlock()

	SortEntries(result)
	return result
}

// SortEntries orders entries by CreatedAt, then Key.
func SortEntries(entries []models.JournalEntry) {
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].CreatedAt.Equal(entries[b].CreatedAt) {
			return entries[a].Key < entries[b].Key
		}
		return entries[a].CreatedAt.Before(entries[b].CreatedAt)
	})
}

// Flush writes the current state to disk. Flushes are serialized and each one snapshots the
// state after taking the write lock, so the file never goes backwards.
func (j *Journal) Flush() error {
	j.writeMu.Lock()
	defer j.writeMu.Unlock()

	start := time.Now()

	j.mu.RLock()
	raw, err := json.MarshalIndent(j.data, "", "  ")
	j.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	if err = writeAtomic(j.path, raw); err != nil {
		return err
	}

	j.metrics.ObservePersistenceDuration(time.Since(start))
	j.reportCounts()
	return nil
}

func (j *Journal) persist() {
	if err := j.Flush(); err != nil {
		j.metrics.IncFlushFailures()
		j.logger.Errorf(providers.TypeJournal, "Failed to flush journal: %s", err)
	}
}

func (j *Journal) reportCounts() {
	counts := j.CountByStatus()
	for _, status := range models.AllStatuses {
		j.metrics.SetJournalEntries(string(status), counts[status])
	}
}

func countByStatus(data *models.JournalData) map[models.JobStatus]int {
	counts := make(map[models.JobStatus]int, len(models.AllStatuses))
	for _, entry := range data.Entries {
		counts[entry.Status]++
	}
	return counts
}

func writeAtomic(path string, data []byte) error {
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}
