package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ConfigValidator collects every configuration problem instead of stopping
// at the first one.
type ConfigValidator struct {
	errors []error
	name   string // config name for error messages
}

// NewConfigValidator creates a validator whose errors are prefixed with
// configName.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{name: configName}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s", cv.name, field, fmt.Sprintf(format, args...)))
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.fail(field, "required field is empty")
	}
	return cv
}

// RangeDuration validates that a duration is within [min, max].
func (cv *ConfigValidator) RangeDuration(field string, value, min, max time.Duration) *ConfigValidator {
	if value < min || value > max {
		cv.fail(field, "duration %v is outside range [%v, %v]", value, min, max)
	}
	return cv
}

// NonNegativeDuration validates that a duration is zero or positive.
func (cv *ConfigValidator) NonNegativeDuration(field string, value time.Duration) *ConfigValidator {
	if value < 0 {
		cv.fail(field, "duration %v must be non-negative", value)
	}
	return cv
}

// SourceLocation validates a feed location: a bare path, file://,
// http(s)://host/path or s3://bucket/key. Empty values pass; pair with
// Required when the source is mandatory.
func (cv *ConfigValidator) SourceLocation(field, value string) *ConfigValidator {
	if value == "" {
		return cv
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare path, including Windows drive letters
		return cv
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		if u.Path == "" {
			cv.fail(field, "file location %q has no path", value)
		}
	case "http", "https":
		if u.Host == "" {
			cv.fail(field, "http location %q has no host", value)
		}
	case "s3":
		if u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
			cv.fail(field, "s3 location %q needs a bucket and key", value)
		}
	default:
		cv.fail(field, "unsupported scheme %q", u.Scheme)
	}
	return cv
}

// Origins validates CORS origins: "*" or scheme://host[:port] with no path.
func (cv *ConfigValidator) Origins(field string, origins []string) *ConfigValidator {
	for _, o := range origins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" ||
			(u.Path != "" && u.Path != "/") || u.RawQuery != "" {
			cv.fail(field, "origin %q must look like https://host[:port]", o)
		}
	}
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// HasErrors returns true if any validation errors occurred.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Validate returns every collected error joined, or nil.
func (cv *ConfigValidator) Validate() error {
	return errors.Join(cv.errors...)
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}

// DefaultOrDuration returns the value if it's positive, otherwise returns the default.
func DefaultOrDuration(value, defaultValue time.Duration) time.Duration {
	if value <= 0 {
		return defaultValue
	}
	return value
}
