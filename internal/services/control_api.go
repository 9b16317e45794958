package services

import (
	"bytes"
	"context"
	"errors"
	"felixrec/internal/models"
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	baseUrlCacheKey  = "api:base-url"
	maxErrorBody     = 4096
	defaultHealthTtl = time.Minute
)

type ControlAPIInterface interface {
	FetchPendingSchedules(ctx context.Context, timeFrom, timeTo string, day int) ([]models.Schedule, error)
	CreateRecording(ctx context.Context, metadata models.RecordingMetadata) (int64, error)
	UpdateRecordingStatus(ctx context.Context, recordingID int64, update models.StatusUpdate) error
	UpdateSTTStatus(ctx context.Context, recordingID int64, update models.STTUpdate) error
}

// APIError is returned for any non-2xx Control API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.StatusCode, e.Body)
}

// ControlAPI talks to the Control API. When a primary endpoint is configured its health
// decides which base URL is used; the decision is cached.
type ControlAPI struct {
	client       *http.Client
	healthClient *http.Client
	primaryUrl   string
	fallbackUrl  string
	apiKey       string
	cache        providers.CacheProviderInterface
	logger       providers.Logger

	// last holds the decision when the cache is disabled.
	last *baseChoice
	now  func() time.Time
}

// baseChoice is a single remembered base URL with an expiry.
type baseChoice struct {
	mu      sync.Mutex
	url     string
	expires time.Time
	ttl     time.Duration
}

func NewControlAPI(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) ControlAPIInterface {
	c := &ControlAPI{
		client:       &http.Client{Timeout: conf.Api.Timeout},
		healthClient: &http.Client{Timeout: conf.Api.HealthTimeout},
		primaryUrl:   strings.TrimRight(conf.Api.PrimaryUrl, "/"),
		fallbackUrl:  strings.TrimRight(conf.Api.FallbackUrl, "/"),
		apiKey:       conf.Api.Key,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
	if providers.IsNoopCache(cache) {
		ttl := conf.Api.HealthCacheTtl
		if ttl <= 0 {
			ttl = defaultHealthTtl
		}
		c.last = &baseChoice{ttl: ttl}
	}
	return c
}

func (c *ControlAPI) FetchPendingSchedules(ctx context.Context, timeFrom, timeTo string, day int) ([]models.Schedule, error) {
	query := url.Values{}
	query.Set("time_from", timeFrom)
	query.Set("time_to", timeTo)
	query.Set("day", strconv.Itoa(day))

	var response models.PendingSchedules
	if err := c.request(ctx, http.MethodGet, "/api/internal/schedules/pending?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	c.logger.Debugf(providers.TypeApi, "Found %d pending schedules between %s and %s (day %d)", response.Count, timeFrom, timeTo, day)
	return response.Schedules, nil
}

func (c *ControlAPI) CreateRecording(ctx context.Context, metadata models.RecordingMetadata) (int64, error) {
	var response models.CreatedRecording
	if err := c.request(ctx, http.MethodPost, "/api/internal/recordings", metadata, &response); err != nil {
		return 0, err
	}

	c.logger.Infof(providers.TypeApi, "Recording created with ID %d (schedule %d, status %s)", response.RecordingID, metadata.ScheduleID, metadata.Status)
	return response.RecordingID, nil
}

func (c *ControlAPI) UpdateRecordingStatus(ctx context.Context, recordingID int64, update models.StatusUpdate) error {
	path := fmt.Sprintf("/api/internal/recordings/%d/status", recordingID)
	if err := c.request(ctx, http.MethodPut, path, update, nil); err != nil {
		return err
	}

	c.logger.Infof(providers.TypeApi, "Recording %d status updated to %s", recordingID, update.Status)
	return nil
}

// UpdateSTTStatus belongs to the transcription side of the client; no recording path calls it.
func (c *ControlAPI) UpdateSTTStatus(ctx context.Context, recordingID int64, update models.STTUpdate) error {
	if !update.Status.Valid() {
		return fmt.Errorf("invalid stt status %q", update.Status)
	}

	path := fmt.Sprintf("/api/internal/recordings/%d/stt", recordingID)
	if err := c.request(ctx, http.MethodPut, path, update, nil); err != nil {
		return err
	}

	c.logger.Infof(providers.TypeApi, "Recording %d STT status updated to %s", recordingID, update.Status)
	return nil
}

// request sends one call. A transport failure against the primary endpoint marks it
// unhealthy and the call is repeated once against the fallback.
func (c *ControlAPI) request(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	base := c.baseUrl(ctx)
	err := c.do(ctx, base, method, path, payload, out)

	var apiErr *APIError
	if err != nil && base != c.fallbackUrl && !errors.As(err, &apiErr) && ctx.Err() == nil {
		c.logger.Warnf(providers.TypeApi, "Primary API %s failed, switching to fallback: %s", base, err)
		c.remember(c.fallbackUrl)
		err = c.do(ctx, c.fallbackUrl, method, path, payload, out)
	}

	if err != nil {
		c.logger.Errorf(providers.TypeApi, "API request %s %s failed: %s", method, path, err)
	}
	return err
}

func (c *ControlAPI) do(ctx context.Context, base, method, path string, payload []byte, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// baseUrl returns the endpoint to use: the primary while it answers /health, else the fallback.
func (c *ControlAPI) baseUrl(ctx context.Context) string {
	if c.primaryUrl == "" {
		return c.fallbackUrl
	}
	if cached, ok := c.recall(); ok {
		return cached
	}

	chosen := c.fallbackUrl
	if c.primaryHealthy(ctx) {
		chosen = c.primaryUrl
	} else {
		c.logger.Warnf(providers.TypeApi, "Primary API %s is unhealthy, using fallback %s", c.primaryUrl, c.fallbackUrl)
	}
	c.remember(chosen)
	return chosen
}

func (c *ControlAPI) recall() (string, bool) {
	if c.last == nil {
		cached, ok := c.cache.Get(baseUrlCacheKey)
		return string(cached), ok
	}

	c.last.mu.Lock()
	defer c.last.mu.Unlock()
	if c.last.url == "" || !c.now().Before(c.last.expires) {
		return "", false
	}
	return c.last.url, true
}

func (c *ControlAPI) remember(base string) {
	if c.last == nil {
		c.cache.Set(baseUrlCacheKey, []byte(base))
		return
	}

	c.last.mu.Lock()
	c.last.url = base
	c.last.expires = c.now().Add(c.last.ttl)
	c.last.mu.Unlock()
}

func (c *ControlAPI) primaryHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.primaryUrl+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.healthClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
