package testutil

import (
	"context"
	"errors"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether any entry at level has a message containing substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Logs {
		if l.Level == level && strings.Contains(l.Message(), substr) {
			return true
		}
	}
	return false
}

// MockMetrics implements providers.MetricsProviderInterface and counts what matters to tests.
type MockMetrics struct {
	mu             sync.Mutex
	Transitions    map[string]int
	Retries        map[string]int
	FlushFailures  int
	PollErrors     int
	CacheHits      int
	CacheMisses    int
	JournalEntries map[string]int
	InFlight       int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Transitions:    make(map[string]int),
		Retries:        make(map[string]int),
		JournalEntries: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *MockMetrics) ObservePhaseDuration(_ string, _ time.Duration)   {}

func (m *MockMetrics) IncCacheHits(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncFlushFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushFailures++
}

func (m *MockMetrics) SetJournalEntries(status string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JournalEntries[status] = count
}

func (m *MockMetrics) IncJobTransition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions[status]++
}

func (m *MockMetrics) IncRetries(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Retries[operation]++
}

func (m *MockMetrics) IncPollErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PollErrors++
}

func (m *MockMetrics) SetInFlightJobs(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InFlight = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements journal.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// CreateRecordingCall captures one CreateRecording request.
type CreateRecordingCall struct {
	Metadata models.RecordingMetadata
}

type StatusCall struct {
	RecordingID int64
	Update      models.StatusUpdate
}

type FetchCall struct {
	TimeFrom string
	TimeTo   string
	Day      int
}

// MockControlAPI implements services.ControlAPIInterface. Each *Fn overrides the default
// behavior; without one, calls succeed.
type MockControlAPI struct {
	mu sync.Mutex

	FetchFn  func(ctx context.Context, timeFrom, timeTo string, day int) ([]models.Schedule, error)
	CreateFn func(ctx context.Context, metadata models.RecordingMetadata) (int64, error)
	StatusFn func(ctx context.Context, id int64, update models.StatusUpdate) error
	STTFn    func(ctx context.Context, id int64, update models.STTUpdate) error

	FetchCalls  []FetchCall
	CreateCalls []CreateRecordingCall
	StatusCalls []StatusCall
	STTCalls    []models.STTUpdate

	nextID int64
}

func (m *MockControlAPI) FetchPendingSchedules(ctx context.Context, timeFrom, timeTo string, day int) ([]models.Schedule, error) {
	m.mu.Lock()
	m.FetchCalls = append(m.FetchCalls, FetchCall{TimeFrom: timeFrom, TimeTo: timeTo, Day: day})
	fn := m.FetchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, timeFrom, timeTo, day)
	}
	return nil, nil
}

func (m *MockControlAPI) CreateRecording(ctx context.Context, metadata models.RecordingMetadata) (int64, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, CreateRecordingCall{Metadata: metadata})
	fn := m.CreateFn
	m.nextID++
	id := 100 + m.nextID
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, metadata)
	}
	return id, nil
}

func (m *MockControlAPI) UpdateRecordingStatus(ctx context.Context, id int64, update models.StatusUpdate) error {
	m.mu.Lock()
	m.StatusCalls = append(m.StatusCalls, StatusCall{RecordingID: id, Update: update})
	fn := m.StatusFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, id, update)
	}
	return nil
}

func (m *MockControlAPI) UpdateSTTStatus(ctx context.Context, id int64, update models.STTUpdate) error {
	m.mu.Lock()
	m.STTCalls = append(m.STTCalls, update)
	fn := m.STTFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, id, update)
	}
	return nil
}

func (m *MockControlAPI) Creates() []CreateRecordingCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreateRecordingCall(nil), m.CreateCalls...)
}

func (m *MockControlAPI) Statuses() []StatusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StatusCall(nil), m.StatusCalls...)
}

func (m *MockControlAPI) Fetches() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.FetchCalls...)
}

type UploadCall struct {
	LocalPath string
	RemoteKey string
}

// MockObjectStore implements services.ObjectStoreInterface.
type MockObjectStore struct {
	mu       sync.Mutex
	UploadFn func(ctx context.Context, localPath, remoteKey string) error
	Uploads  []UploadCall
}

func (m *MockObjectStore) UploadFile(ctx context.Context, localPath, remoteKey string) error {
	m.mu.Lock()
	m.Uploads = append(m.Uploads, UploadCall{LocalPath: localPath, RemoteKey: remoteKey})
	fn := m.UploadFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, localPath, remoteKey)
	}
	return nil
}

func (m *MockObjectStore) Calls() []UploadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UploadCall(nil), m.Uploads...)
}

type CaptureCall struct {
	StreamURL    string
	DurationSecs int
	OutputPath   string
}

// MockCapturer implements services.CaptureInterface. By default it writes Content
// (or a few placeholder bytes) to the output path.
type MockCapturer struct {
	mu        sync.Mutex
	CaptureFn func(ctx context.Context, streamURL string, durationSecs int, outputPath string) error
	Content   []byte
	Calls     []CaptureCall
}

func (m *MockCapturer) Capture(ctx context.Context, streamURL string, durationSecs int, outputPath string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, CaptureCall{StreamURL: streamURL, DurationSecs: durationSecs, OutputPath: outputPath})
	fn := m.CaptureFn
	content := m.Content
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, streamURL, durationSecs, outputPath)
	}
	if content == nil {
		content = []byte("ID3-mock-audio")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, content, 0644)
}

func (m *MockCapturer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ErrMock is a generic failure for injected errors.
var ErrMock = errors.New("mock failure")

// NoSleep records requested delays instead of sleeping.
type NoSleep struct {
	mu     sync.Mutex
	Delays []time.Duration
}

func (s *NoSleep) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Delays = append(s.Delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *NoSleep) Recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.Delays...)
}
