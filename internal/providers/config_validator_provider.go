package providers

import (
	"errors"
	"felixrec/internal/structures"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct tag rules first, then the cross-field checks tags cannot express.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("configuration validation failed: %w", v.Errors)
	}

	var errs []error
	api := c.conf.Api
	if !isHttpUrl(api.FallbackUrl) {
		errs = append(errs, errors.New("api.fallbackUrl must be a valid HTTP URL"))
	}
	if api.PrimaryUrl != "" && !isHttpUrl(api.PrimaryUrl) {
		errs = append(errs, errors.New("api.primaryUrl must be a valid HTTP URL"))
	}
	if !strings.HasPrefix(c.conf.Storage.Endpoint, "https://") {
		errs = append(errs, errors.New("storage.endpoint must be a valid HTTPS URL"))
	}
	if _, err := time.LoadLocation(c.conf.Recorder.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("recorder.timezone: %w", err))
	}
	if c.conf.WebServer.Enabled && (c.conf.WebServer.Host == "" || c.conf.WebServer.Port < 1) {
		errs = append(errs, errors.New("webServer.host and webServer.port are required when the server is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func isHttpUrl(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
