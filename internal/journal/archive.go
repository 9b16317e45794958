package journal

import (
	"bufio"
	"bytes"
	"errors"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	archiveDirName = "archive"
	archiveSuffix  = ".jsonl.zst"
	MonthLayout    = "2006-01"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ArchivedEntry is one line of a monthly archive file.
type ArchivedEntry struct {
	models.JournalEntry
	ArchivedAt time.Time `json:"archivedAt"`
}

// Archive keeps entries pruned from the journal as zstd-compressed JSON lines, one file per
// month. Every Append adds a self-contained frame to the end of the file.
type Archive struct {
	mu         sync.Mutex
	dir        string
	compressor CompressorInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewArchive(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) *Archive {
	return &Archive{
		dir:        filepath.Join(conf.Recorder.DataDir, archiveDirName),
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}
}

func (a *Archive) Dir() string {
	return a.dir
}

func (a *Archive) Append(entries ...models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	now := a.now()
	var buf bytes.Buffer
	for _, entry := range entries {
		line, err := json.Marshal(ArchivedEntry{JournalEntry: entry, ArchivedAt: now})
		if err != nil {
			return fmt.Errorf("marshal archived entry %s: %w", entry.Key, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	frame, err := a.compressor.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("compress archive frame: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err = os.MkdirAll(a.dir, 0755); err != nil {
		return err
	}

	path := a.monthPath(now.Format(MonthLayout))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	if _, err = file.Write(frame); err != nil {
		file.Close()
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}

	a.logger.Debugf(providers.TypeJournal, "Archived %d entries to %s", len(entries), path)
	return nil
}

// ReadMonth returns the entries archived in month (YYYY-MM). A month without archive is empty.
func (a *Archive) ReadMonth(month string) ([]ArchivedEntry, error) {
	if !monthPattern.MatchString(month) {
		return nil, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}

	a.mu.Lock()
	raw, err := os.ReadFile(a.monthPath(month))
	a.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	data, err := a.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decompress archive %s: %w", month, err)
	}

	var result []ArchivedEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry ArchivedEntry
		if err = json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("parse archive %s: %w", month, err)
		}
		result = append(result, entry)
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Months lists the months that have an archive file, oldest first.
func (a *Archive) Months() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(a.dir, "*"+archiveSuffix))
	if err != nil {
		return nil, err
	}

	months := make([]string, 0, len(files))
	for _, file := range files {
		month := strings.TrimSuffix(filepath.Base(file), archiveSuffix)
		if monthPattern.MatchString(month) {
			months = append(months, month)
		}
	}
	sort.Strings(months)
	return months, nil
}

func (a *Archive) monthPath(month string) string {
	return filepath.Join(a.dir, month+archiveSuffix)
}
