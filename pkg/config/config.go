// Package config loads the eyeball service configuration from a YAML file
// with EYEBALL_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/source"
	"github.com/dd0wney/cluso-eyeball/pkg/validation"
	"github.com/dd0wney/cluso-eyeball/pkg/visualization"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EYEBALL_"

const (
	DefaultListenAddr      = ":8080"
	DefaultRecordsSource   = "data/sampleData.json"
	DefaultRefreshInterval = 5 * time.Minute
	DefaultFetchTimeout    = 10 * time.Second
	DefaultWidth           = 1200.0
	DefaultHeight          = 800.0
	DefaultLogLevel        = "info"
)

// Config is the complete service configuration.
type Config struct {
	ListenAddr      string            `yaml:"listen_addr" validate:"required"`
	RecordsSource   string            `yaml:"records_source" validate:"required"`
	SummarySource   string            `yaml:"summary_source"`
	Summary         map[string]string `yaml:"summary"`
	RefreshInterval time.Duration     `yaml:"refresh_interval"`
	FetchTimeout    time.Duration     `yaml:"fetch_timeout"`
	Layout          string            `yaml:"layout" validate:"omitempty,oneof=radial force hierarchical"`
	Width           float64           `yaml:"width" validate:"gt=0"`
	Height          float64           `yaml:"height" validate:"gt=0"`
	Seed            int64             `yaml:"seed"`
	PeerIdentity    string            `yaml:"peer_identity" validate:"omitempty,oneof=per-record per-host"`
	LogLevel        string            `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	CORSOrigins     []string          `yaml:"cors_origins"`
	S3              source.S3Config   `yaml:"s3"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		RecordsSource:   DefaultRecordsSource,
		RefreshInterval: DefaultRefreshInterval,
		FetchTimeout:    DefaultFetchTimeout,
		Layout:          visualization.LayoutRadial,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		PeerIdentity:    graph.PerRecord.String(),
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from EYEBALL_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}
	float := func(name string, dst *float64) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = f
		return nil
	}

	str("LISTEN_ADDR", &c.ListenAddr)
	str("RECORDS_SOURCE", &c.RecordsSource)
	str("SUMMARY_SOURCE", &c.SummarySource)
	str("LAYOUT", &c.Layout)
	str("PEER_IDENTITY", &c.PeerIdentity)
	str("LOG_LEVEL", &c.LogLevel)
	str("S3_REGION", &c.S3.Region)
	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("S3_ACCESS_KEY_ID", &c.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey)

	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "S3_USE_PATH_STYLE"); ok {
		c.S3.UsePathStyle = v == "true"
	}

	for _, err := range []error{
		dur("REFRESH_INTERVAL", &c.RefreshInterval),
		dur("FETCH_TIMEOUT", &c.FetchTimeout),
		float("WIDTH", &c.Width),
		float("HEIGHT", &c.Height),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) fillDefaults() {
	c.ListenAddr = validation.DefaultOr(c.ListenAddr, DefaultListenAddr)
	c.Layout = validation.DefaultOr(c.Layout, visualization.LayoutRadial)
	c.PeerIdentity = validation.DefaultOr(c.PeerIdentity, graph.PerRecord.String())
	c.LogLevel = validation.DefaultOr(c.LogLevel, DefaultLogLevel)
	c.FetchTimeout = validation.DefaultOrDuration(c.FetchTimeout, DefaultFetchTimeout)
}

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return validation.NewConfigValidator("eyeball").
		SourceLocation("records_source", c.RecordsSource).
		SourceLocation("summary_source", c.SummarySource).
		Origins("cors_origins", c.CORSOrigins).
		RangeDuration("fetch_timeout", c.FetchTimeout, 100*time.Millisecond, 5*time.Minute).
		NonNegativeDuration("refresh_interval", c.RefreshInterval).
		When(c.RefreshInterval > 0, func(cv *validation.ConfigValidator) {
			cv.RangeDuration("refresh_interval", c.RefreshInterval, time.Second, 24*time.Hour)
		}).
		When(c.SummarySource != "" && len(c.Summary) > 0, func(cv *validation.ConfigValidator) {
			cv.Custom("summary", func() error {
				return errors.New("set either summary_source or summary, not both")
			})
		}).
		When(c.S3.AccessKeyID != "", func(cv *validation.ConfigValidator) {
			cv.Required("s3.secret_access_key", c.S3.SecretAccessKey)
		}).
		Validate()
}

// Identity returns the configured peer identity mode.
func (c *Config) Identity() graph.PeerIdentity {
	id, err := graph.ParsePeerIdentity(c.PeerIdentity)
	if err != nil {
		return graph.PerRecord
	}
	return id
}

// LayoutConfig returns the canvas settings for the layout engines.
func (c *Config) LayoutConfig() *visualization.LayoutConfig {
	return &visualization.LayoutConfig{
		Width:  c.Width,
		Height: c.Height,
		Seed:   c.Seed,
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
