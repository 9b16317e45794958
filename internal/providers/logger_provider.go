package providers

import (
	"felixrec/internal/structures"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeJournal
	TypePoller
	TypeExecutor
	TypeRecovery
	TypeCleaner
	TypeApi
	TypeHttp
)

const logFileName = "felixrec.log"

var typeNames = map[TypeEnum]string{
	TypeApp:      "app",
	TypeJournal:  "journal",
	TypePoller:   "poller",
	TypeExecutor: "executor",
	TypeRecovery: "recovery",
	TypeCleaner:  "cleaner",
	TypeApi:      "api",
	TypeHttp:     "http",
}

func (t TypeEnum) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	base zerolog.Logger
	file *os.File
}

func (l *LogProvider) event(t TypeEnum, e *zerolog.Event, format string, args ...interface{}) {
	e.Str("component", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.event(t, l.base.Error(), format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.event(t, l.base.Warn(), format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.event(t, l.base.Debug(), format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.event(t, l.base.Info(), format, args...)
}

// Fatalf logs and terminates the process.
func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.event(t, l.base.Fatal(), format, args...)
}

func (l *LogProvider) Close() {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	path := filepath.Join(conf.Logger.Dir, logFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var stdout io.Writer = os.Stdout
	if conf.Debug {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return &LogProvider{base: newBaseLogger(conf, level, zerolog.MultiLevelWriter(file, stdout)), file: file}, nil
}

// NewConsoleLogProvider logs human-readable lines to w only. Used by one-shot CLI commands
// that must not write to the daemon's log file.
func NewConsoleLogProvider(conf *structures.Config, w io.Writer) Logger {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil || conf.Logger.Level == "" {
		level = zerolog.WarnLevel
	}
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return &LogProvider{base: newBaseLogger(conf, level, writer)}
}

func newBaseLogger(conf *structures.Config, level zerolog.Level, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Logger()
}
