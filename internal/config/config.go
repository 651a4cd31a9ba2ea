// Package config loads the YAML run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-astromaps/internal/astro"
	"github.com/litescript/ls-astromaps/internal/body"
	"github.com/litescript/ls-astromaps/internal/ephem"
	"github.com/litescript/ls-astromaps/internal/history"
	"github.com/litescript/ls-astromaps/internal/logging"
	"github.com/litescript/ls-astromaps/internal/sampler"
)

// Config is the full run configuration. Zero-valued fields take the
// defaults in their struct tags.
type Config struct {
	Location struct {
		Name       string  `yaml:"name" default:"Paris"`
		Latitude   float64 `yaml:"latitude" default:"48.8566" validate:"gte=-90,lte=90"`
		Longitude  float64 `yaml:"longitude" default:"2.3522" validate:"gte=-180,lte=180"`
		ElevationM float64 `yaml:"elevation_m" validate:"gte=-500,lte=9000"`
	} `yaml:"location"`

	Ephemeris struct {
		Mode string `yaml:"mode" default:"analytic" validate:"oneof=analytic vsop87 jpl horizons"`
		Path string `yaml:"path"`
	} `yaml:"ephemeris"`

	Catalog struct {
		Enabled      bool     `yaml:"enabled"`
		Path         string   `yaml:"path" default:"MPCORB.DAT"`
		Designations []string `yaml:"designations"`
		Limit        int      `yaml:"limit" default:"10" validate:"gte=0,lte=1000"`
	} `yaml:"catalog"`

	Ascendant struct {
		Method string `yaml:"method" default:"closed-form" validate:"oneof=closed-form search"`
	} `yaml:"ascendant"`

	Sampling struct {
		Interval time.Duration `yaml:"interval" default:"6h" validate:"gt=0"`
		Span     time.Duration `yaml:"span" validate:"gte=0"`
		Bodies   []string      `yaml:"bodies"`
		Policy   string        `yaml:"policy" default:"skip" validate:"oneof=skip abort"`
		Workers  int           `yaml:"workers" default:"1" validate:"gte=1,lte=64"`
	} `yaml:"sampling"`

	History struct {
		Collision     string `yaml:"collision" default:"overwrite" validate:"oneof=overwrite reject"`
		Interpolation string `yaml:"interpolation" default:"linear" validate:"oneof=linear akima"`
	} `yaml:"history"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`

	Output struct {
		Path        string `yaml:"path" default:"celestial_positions.json"`
		Plot        bool   `yaml:"plot"`
		PlotWidth   int    `yaml:"plot_width" default:"72" validate:"gte=20,lte=400"`
		PlotHeight  int    `yaml:"plot_height" default:"18" validate:"gte=6,lte=120"`
		MetricsFile string `yaml:"metrics_file"`
	} `yaml:"output"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// Tags are static; a failure here is a programming error.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("validate config: %s", strings.Join(msgs, "; "))
	}

	switch c.Ephemeris.Mode {
	case "vsop87", "jpl":
		if c.Ephemeris.Path == "" {
			return fmt.Errorf("validate config: ephemeris.path is required for mode %s", c.Ephemeris.Mode)
		}
	}
	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return fmt.Errorf("validate config: catalog.path is required when the catalog is enabled")
	}
	return nil
}

// describe renders a field error using the YAML path of the field.
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// GeoLocation returns the configured observing site.
func (c *Config) GeoLocation() astro.GeoLocation {
	return astro.GeoLocation{
		LatDeg:     c.Location.Latitude,
		LonDeg:     c.Location.Longitude,
		ElevationM: c.Location.ElevationM,
		Name:       c.Location.Name,
	}
}

// EphemerisConfig returns the provider selection.
func (c *Config) EphemerisConfig() ephem.Config {
	return ephem.Config{Mode: ephem.ParseMode(c.Ephemeris.Mode), Path: c.Ephemeris.Path}
}

// AscendantMethod returns the configured ascendant derivation.
func (c *Config) AscendantMethod() body.AscendantMethod {
	return body.ParseAscendantMethod(c.Ascendant.Method)
}

// HistoryOptions returns the history collision and interpolation settings.
func (c *Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithCollisionPolicy(history.ParseCollisionPolicy(c.History.Collision)),
		history.WithInterpolator(history.ParseInterpolator(c.History.Interpolation)),
	}
}

// FailurePolicy returns the sampling failure policy.
func (c *Config) FailurePolicy() sampler.FailurePolicy {
	return sampler.ParseFailurePolicy(c.Sampling.Policy)
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger() *logging.Logger {
	l := logging.New(logging.ParseLevel(c.Log.Level))
	l.SetFormat(logging.ParseFormat(c.Log.Format))
	return l
}
