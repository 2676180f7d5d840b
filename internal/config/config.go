// Package config resolves the router's settings from an optional YAML file,
// environment overrides, and built-in defaults, in that order of discovery
// with the environment winning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultModel       = "models/gemini-2.0-flash"
	defaultTemperature = 0.7
)

// Settings is the process-wide configuration, resolved once at startup.
type Settings struct {
	Server ServerSettings `yaml:"server"`
	Gemini GeminiSettings `yaml:"gemini"`
	Auth   AuthSettings   `yaml:"auth"`
	CORS   CORSSettings   `yaml:"cors"`
}

type ServerSettings struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GeminiSettings struct {
	APIKey             string  `yaml:"api_key"`
	BaseURL            string  `yaml:"base_url"`
	DefaultModel       string  `yaml:"default_model"`
	DefaultTemperature float64 `yaml:"default_temperature"`

	// temperatureSet records whether the temperature came from the file or
	// the environment, so a configured 0 is not mistaken for "unset".
	temperatureSet bool
}

type AuthSettings struct {
	// APIKey is the shared secret compared against the x-api-key header.
	// Empty means the access guard is disabled (development mode).
	APIKey string `yaml:"api_key"`
}

type CORSSettings struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// Load reads settings from the YAML file at path, then applies environment
// overrides and defaults. A missing file is not an error; the router can run
// from the environment alone.
func Load(path string) (*Settings, error) {
	var s Settings

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &s); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			if hasYAMLKey(b, "default_temperature") {
				s.Gemini.temperatureSet = true
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := applyEnvOverrides(&s); err != nil {
		return nil, err
	}
	applyDefaults(&s)
	return &s, nil
}

func applyEnvOverrides(s *Settings) error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		s.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		s.Gemini.DefaultModel = v
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GEMINI_TEMPERATURE %q: %w", v, err)
		}
		s.Gemini.DefaultTemperature = f
		s.Gemini.temperatureSet = true
	}
	if v := os.Getenv("ROUTER_API_KEY"); v != "" {
		s.Auth.APIKey = v
	}
	return nil
}

func applyDefaults(s *Settings) {
	if s.Server.Port == 0 {
		s.Server.Port = 8000
	}
	if s.Server.ReadTimeout == 0 {
		s.Server.ReadTimeout = 60 * time.Second
	}
	if s.Server.WriteTimeout == 0 {
		s.Server.WriteTimeout = 120 * time.Second
	}
	if s.Server.ShutdownTimeout == 0 {
		s.Server.ShutdownTimeout = 30 * time.Second
	}
	if s.Gemini.DefaultModel == "" {
		s.Gemini.DefaultModel = defaultModel
	}
	if !s.Gemini.temperatureSet {
		s.Gemini.DefaultTemperature = defaultTemperature
	}
	if len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = []string{"*"}
	}
	if len(s.CORS.AllowedMethods) == 0 {
		s.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(s.CORS.AllowedHeaders) == 0 {
		s.CORS.AllowedHeaders = []string{"Content-Type", "x-api-key"}
	}
}

// hasYAMLKey reports whether the raw document mentions the key at all,
// which distinguishes a configured zero temperature from an absent one.
func hasYAMLKey(b []byte, key string) bool {
	return strings.Contains(string(b), key+":")
}

// ResolveModel returns the request's effective model name, falling back to
// the configured default when no explicit name is given.
func (s *Settings) ResolveModel(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s.Gemini.DefaultModel
}

// ResolveTemperature returns the effective temperature. Only an absent
// value (nil) triggers the default; an explicit zero is kept. No range
// validation is performed; out-of-range values become the upstream error.
func (s *Settings) ResolveTemperature(explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	return s.Gemini.DefaultTemperature
}
