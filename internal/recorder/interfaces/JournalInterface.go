package interfaces

import "felixrec/internal/models"

type JournalReader interface {
	HasEntry(scheduleID int64, date string) bool
	GetEntry(key string) (models.JournalEntry, bool)
	GetEntriesByStatus(status models.JobStatus) []models.JournalEntry
	GetIncomplete() []models.JournalEntry
	GetAllEntries() []models.JournalEntry
	CountByStatus() map[models.JobStatus]int
}

type JournalInterface interface {
	JournalReader
	Load() error
	AddEntry(entry models.JournalEntry) error
	UpdateEntry(key string, upd models.EntryUpdate) (models.JournalEntry, bool)
	RemoveEntry(key string)
	Flush() error
}

type ArchiveInterface interface {
	Append(entries ...models.JournalEntry) error
}
