package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port" validate:"uint"`
}

// ApiConfig describes the Control API. PrimaryUrl is optional and health-checked,
// FallbackUrl is always available.
type ApiConfig struct {
	PrimaryUrl     string        `yaml:"primaryUrl"`
	FallbackUrl    string        `yaml:"fallbackUrl" validate:"required"`
	Key            string        `yaml:"key" validate:"required|minLen:10"`
	Timeout        time.Duration `yaml:"timeout" validate:"required"`
	HealthTimeout  time.Duration `yaml:"healthTimeout" validate:"required"`
	HealthCacheTtl time.Duration `yaml:"healthCacheTtl"`
}

type StorageConfig struct {
	AccountId       string `yaml:"accountId" validate:"required"`
	AccessKeyId     string `yaml:"accessKeyId" validate:"required"`
	SecretAccessKey string `yaml:"secretAccessKey" validate:"required"`
	Bucket          string `yaml:"bucket" validate:"required"`
	Endpoint        string `yaml:"endpoint" validate:"required"`
	Region          string `yaml:"region"`
}

type RecorderConfig struct {
	DataDir            string        `yaml:"dataDir" validate:"required|unixPath"`
	Timezone           string        `yaml:"timezone" validate:"required"`
	RetentionDays      int           `yaml:"retentionDays" validate:"required|min:1|max:30"`
	ScheduleWindowMins int           `yaml:"scheduleWindowMins" validate:"required|min:1|max:15"`
	FfmpegPath         string        `yaml:"ffmpegPath" validate:"required"`
	CleanInterval      time.Duration `yaml:"cleanInterval" validate:"required"`
	CleanStartupDelay  time.Duration `yaml:"cleanStartupDelay"`
	MaxRetries         int           `yaml:"maxRetries" validate:"required|min:1|max:10"`
	RetryBaseDelay     time.Duration `yaml:"retryBaseDelay" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Api       ApiConfig      `yaml:"api"`
	Storage   StorageConfig  `yaml:"storage"`
	Recorder  RecorderConfig `yaml:"recorder"`
	WebServer Server         `yaml:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

// Location resolves the configured timezone, falling back to the process local zone.
func (c *Config) Location() *time.Location {
	if c.Recorder.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Recorder.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
