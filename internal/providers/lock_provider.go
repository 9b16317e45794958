package providers

import (
	"errors"
	"felixrec/internal/structures"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = "felixrec.lock"

var ErrAlreadyRunning = errors.New("another recorder instance holds the data directory lock")

type LockProviderInterface interface {
	Acquire() error
	Release() error
	Path() string
}

// LockProvider guards the data directory so only one process owns journal.json.
type LockProvider struct {
	lock *flock.Flock
}

func NewLockProvider(conf *structures.Config) LockProviderInterface {
	return &LockProvider{lock: flock.New(filepath.Join(conf.Recorder.DataDir, lockFileName))}
}

func (l *LockProvider) Acquire() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.lock.Path(), err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	return nil
}

func (l *LockProvider) Release() error {
	return l.lock.Unlock()
}

func (l *LockProvider) Path() string {
	return l.lock.Path()
}
