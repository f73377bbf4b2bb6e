// Package config loads the harvester configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/yeg-events/internal/event"
	"github.com/pfrederiksen/yeg-events/internal/pipeline"
)

// Source types
const (
	SourceExploreEdmonton = "explore_edmonton"
	SourceSocrata         = "socrata"
	SourceEventbrite      = "eventbrite"
)

// Environment overrides
const (
	EnvSocrataAppToken = "SOCRATA_APP_TOKEN"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvDataDir         = "YEG_EVENTS_DATA_DIR"
)

// Configuration validation errors.
var (
	ErrNoSources     = errors.New("at least one source must be enabled")
	ErrUnknownSource = errors.New("unknown source type")
	ErrUnknownStep   = pipeline.ErrUnknownStep
)

// DefaultSocrataDataset is the City of Edmonton events dataset
const DefaultSocrataDataset = "fyh5-6aba"

var validate = validator.New()

// Config represents the complete harvester configuration.
type Config struct {
	Timezone string         `yaml:"timezone" validate:"required,timezone"`
	Sources  []SourceConfig `yaml:"sources" validate:"dive"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
}

// SourceConfig configures one event source.
type SourceConfig struct {
	Type      string            `yaml:"type" validate:"required"`
	Enabled   bool              `yaml:"enabled"`
	URL       string            `yaml:"url" validate:"omitempty,url"`
	DatasetID string            `yaml:"dataset_id" validate:"required_if=Type socrata"`
	AppToken  string            `yaml:"app_token"`
	FieldMap  map[string]string `yaml:"field_map"`
	Where     string            `yaml:"where"`
	MaxPages  int               `yaml:"max_pages" validate:"gte=0"`
	PageSize  int               `yaml:"page_size" validate:"gte=0,lte=50000"`
}

// PipelineConfig lists the processing steps in order.
type PipelineConfig struct {
	Steps []string `yaml:"steps"`
}

// GeocodeConfig points at a venue table. Empty uses the built-in table.
type GeocodeConfig struct {
	VenuesFile string `yaml:"venues_file"`
}

// HTTPConfig configures the shared scraper client.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent  string        `yaml:"user_agent"`
	MaxRetries int           `yaml:"max_retries" validate:"gte=0,lte=10"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`
	DatabaseURL string `yaml:"database_url"`
}

// Default returns a configuration with every source and step enabled.
func Default() *Config {
	return &Config{
		Timezone: event.DefaultTimezone,
		Sources: []SourceConfig{
			{Type: SourceExploreEdmonton, Enabled: true},
			{Type: SourceSocrata, Enabled: true, DatasetID: DefaultSocrataDataset},
			{Type: SourceEventbrite, Enabled: true},
		},
		Pipeline: PipelineConfig{
			Steps: append([]string(nil), pipeline.DefaultSteps...),
		},
		HTTP: HTTPConfig{
			Timeout:    15 * time.Second,
			MaxRetries: 3,
		},
	}
}

// Location loads the configured time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone: %w", err)
	}
	return loc, nil
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
// A .env file in the working directory is loaded if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if token := os.Getenv(EnvSocrataAppToken); token != "" {
		for i := range c.Sources {
			if c.Sources[i].Type == SourceSocrata && c.Sources[i].AppToken == "" {
				c.Sources[i].AppToken = token
			}
		}
	}
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		c.Storage.DatabaseURL = url
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.Storage.DataDir = dir
	}
}

// Validate checks field constraints, source types and step names.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("invalid config: %s", describe(validationErrors))
		}
		return err
	}

	for _, src := range c.Sources {
		switch src.Type {
		case SourceExploreEdmonton, SourceSocrata, SourceEventbrite:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSource, src.Type)
		}
	}

	if len(c.EnabledSources()) == 0 {
		return ErrNoSources
	}

	for _, step := range c.Pipeline.Steps {
		switch step {
		case pipeline.StepNormalizeText, pipeline.StepDedupe, pipeline.StepEnrichGeocode:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownStep, step)
		}
	}

	return nil
}

// EnabledSources returns the sources with enabled set, in file order.
func (c *Config) EnabledSources() []SourceConfig {
	enabled := make([]SourceConfig, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		field := err.Namespace()
		switch err.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "timezone":
			msgs = append(msgs, fmt.Sprintf("%s must be an IANA time zone", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, err.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", field, err.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
