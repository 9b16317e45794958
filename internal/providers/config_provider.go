package providers

import (
	"errors"
	"felixrec/internal/structures"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "FelixRadioRecorder"

// envBindings keeps the variable names used by existing deployments.
var envBindings = map[string]string{
	"api.primaryUrl":              "WORKERS_API_URL_PRIMARY",
	"api.fallbackUrl":             "WORKERS_API_URL_FALLBACK",
	"api.key":                     "INTERNAL_API_KEY",
	"api.timeout":                 "FELIXREC_API_TIMEOUT",
	"storage.accountId":           "R2_ACCOUNT_ID",
	"storage.accessKeyId":         "R2_ACCESS_KEY_ID",
	"storage.secretAccessKey":     "R2_SECRET_ACCESS_KEY",
	"storage.bucket":              "R2_BUCKET_NAME",
	"storage.endpoint":            "R2_ENDPOINT",
	"recorder.timezone":           "TZ",
	"recorder.dataDir":            "DATA_DIR",
	"recorder.retentionDays":      "RETENTION_DAYS",
	"recorder.scheduleWindowMins": "SCHEDULE_WINDOW_MINS",
	"recorder.ffmpegPath":         "FELIXREC_FFMPEG_PATH",
	"logger.level":                "LOG_LEVEL",
	"logger.dir":                  "FELIXREC_LOG_DIR",
	"webServer.enabled":           "FELIXREC_HTTP_ENABLED",
	"webServer.port":              "FELIXREC_HTTP_PORT",
	"metrics.enabled":             "FELIXREC_METRICS_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.healthTimeout", 3*time.Second)
	v.SetDefault("api.healthCacheTtl", time.Minute)
	v.SetDefault("storage.region", "auto")
	v.SetDefault("recorder.dataDir", "/data/felix-recordings")
	v.SetDefault("recorder.timezone", "Asia/Seoul")
	v.SetDefault("recorder.retentionDays", 3)
	v.SetDefault("recorder.scheduleWindowMins", 5)
	v.SetDefault("recorder.ffmpegPath", "ffmpeg")
	v.SetDefault("recorder.cleanInterval", time.Hour)
	v.SetDefault("recorder.cleanStartupDelay", 10*time.Second)
	v.SetDefault("recorder.maxRetries", 5)
	v.SetDefault("recorder.retryBaseDelay", time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "/data/felix-recordings/logs")
	v.SetDefault("webServer.enabled", false)
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 1)
	v.SetDefault("metrics.enabled", false)
}

// LoadConfig reads the YAML file (optional), .env and the environment, without validation.
func LoadConfig(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	conf, err := LoadConfig(flags)
	if err != nil {
		return nil, err
	}

	cnfValidator := NewCnfValidator(conf)
	if err = cnfValidator.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{conf.Recorder.DataDir, conf.Logger.Dir} {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return conf, nil
}

// Redacted returns the configuration fields safe to log.
func Redacted(conf *structures.Config) map[string]interface{} {
	primary := conf.Api.PrimaryUrl
	if primary == "" {
		primary = "(none)"
	}
	return map[string]interface{}{
		"apiPrimaryUrl":      primary,
		"apiFallbackUrl":     conf.Api.FallbackUrl,
		"storageEndpoint":    conf.Storage.Endpoint,
		"storageBucket":      conf.Storage.Bucket,
		"timezone":           conf.Recorder.Timezone,
		"logLevel":           conf.Logger.Level,
		"dataDir":            conf.Recorder.DataDir,
		"retentionDays":      conf.Recorder.RetentionDays,
		"scheduleWindowMins": conf.Recorder.ScheduleWindowMins,
	}
}
