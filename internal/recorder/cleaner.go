package recorder

import (
	"errors"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/recorder/interfaces"
	"felixrec/internal/structures"
	"os"
	"time"
)

// Cleaner prunes fully synced entries past the retention period together with their audio.
type Cleaner struct {
	journal   interfaces.JournalInterface
	archive   interfaces.ArchiveInterface
	logger    providers.Logger
	retention time.Duration
	now       func() time.Time
}

func NewCleaner(conf *structures.Config, journal interfaces.JournalInterface, archive interfaces.ArchiveInterface, logger providers.Logger) *Cleaner {
	return &Cleaner{
		journal:   journal,
		archive:   archive,
		logger:    logger,
		retention: time.Duration(conf.Recorder.RetentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Clean removes every db_synced entry whose last update is at least the retention period old
// and returns how many were removed. Entries in any other status are never touched.
func (c *Cleaner) Clean() int {
	now := c.now()
	removed := 0

	for _, entry := range c.journal.GetEntriesByStatus(models.StatusDbSynced) {
		if now.Sub(entry.UpdatedAt) < c.retention {
			continue
		}

		if entry.LocalPath != "" {
			if err := os.Remove(entry.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				c.logger.Errorf(providers.TypeCleaner, "Failed to delete %s for %s: %s", entry.LocalPath, entry.Key, err)
				continue
			}
		}

		if err := c.archive.Append(entry); err != nil {
			c.logger.Warnf(providers.TypeCleaner, "Failed to archive %s: %s", entry.Key, err)
		}

		c.journal.RemoveEntry(entry.Key)
		removed++
		c.logger.Debugf(providers.TypeCleaner, "Pruned %s (synced %s ago)", entry.Key, now.Sub(entry.UpdatedAt).Round(time.Minute))
	}

	if removed > 0 {
		c.logger.Infof(providers.TypeCleaner, "Cleaned up %d expired recording(s)", removed)
	}
	return removed
}
