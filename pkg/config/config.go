package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaName = "techboard-config.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Config is the file-level configuration of the techboard server.
type Config struct {
	Listen          string            `yaml:"listen"`
	BasePath        string            `yaml:"base_path"`
	RefreshInterval string            `yaml:"refresh_interval"`
	Demo            bool              `yaml:"demo"`
	ERP             ERPConfig         `yaml:"erp"`
	Map             MapConfig         `yaml:"map"`
	Leaderboard     LeaderboardConfig `yaml:"leaderboard"`
}

// ERPConfig points at the ERP site serving the dashboard RPC methods.
type ERPConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	Timezone  string        `yaml:"timezone"`
	Timeout   string        `yaml:"timeout"`
	Methods   MethodsConfig `yaml:"methods"`
}

// MethodsConfig overrides RPC method paths.
type MethodsConfig struct {
	Stats       string `yaml:"stats"`
	Locations   string `yaml:"locations"`
	Leaderboard string `yaml:"leaderboard"`
}

// MapConfig sets the initial viewport.
type MapConfig struct {
	CenterLat float64 `yaml:"center_lat"`
	CenterLng float64 `yaml:"center_lng"`
	Zoom      int     `yaml:"zoom"`
	Padding   int     `yaml:"padding"`
}

// LeaderboardConfig controls the optional bar chart.
type LeaderboardConfig struct {
	Chart           bool   `yaml:"chart"`
	ChartTop        int    `yaml:"chart_top"`
	ChartCacheTTL   string `yaml:"chart_cache_ttl"`
	ChartAssetsHost string `yaml:"chart_assets_host"`
}

// Defaults returns the configuration used when no file is supplied.
func Defaults() Config {
	return Config{
		Listen:          ":8080",
		BasePath:        "/admin",
		RefreshInterval: "60s",
		ERP: ERPConfig{
			Timezone: "UTC",
			Timeout:  "10s",
		},
		Map: MapConfig{
			CenterLat: 30.3753,
			CenterLng: 69.3451,
			Zoom:      5,
			Padding:   50,
		},
		Leaderboard: LeaderboardConfig{
			Chart:         true,
			ChartTop:      10,
			ChartCacheTTL: "5m",
		},
	}
}

// Load reads a YAML file over the defaults. The raw document is validated
// against the embedded schema before decoding.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(data, cfg)
}

// Decode validates data and decodes it over base.
func Decode(data []byte, base Config) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := ValidateDocument(raw); err != nil {
		return Config{}, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateDocument checks a decoded document against the embedded schema.
func ValidateDocument(doc map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: marshal document: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("config: normalize document: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("config: document failed validation: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("config: load schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaName)
		if compileErr != nil {
			compileErr = fmt.Errorf("config: compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks values the schema cannot express.
func (c Config) Validate() error {
	var errs []error
	interval, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		errs = append(errs, fmt.Errorf("config: refresh_interval: %w", err))
	} else if interval < time.Second {
		errs = append(errs, fmt.Errorf("config: refresh_interval must be at least 1s, got %s", interval))
	}
	if _, err := time.LoadLocation(c.ERP.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("config: erp.timezone: %w", err))
	}
	if c.ERP.Timeout != "" {
		if _, err := time.ParseDuration(c.ERP.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("config: erp.timeout: %w", err))
		}
	}
	if c.Leaderboard.ChartCacheTTL != "" {
		if _, err := time.ParseDuration(c.Leaderboard.ChartCacheTTL); err != nil {
			errs = append(errs, fmt.Errorf("config: leaderboard.chart_cache_ttl: %w", err))
		}
	}
	if !c.Demo && c.ERP.BaseURL == "" {
		errs = append(errs, errors.New("config: erp.base_url is required unless demo mode is enabled"))
	}
	return errors.Join(errs...)
}

// Interval returns the parsed refresh interval.
func (c Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 0
	}
	return d
}

// Location returns the ERP timezone, defaulting to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ERP.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timeout returns the HTTP timeout for ERP calls.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.ERP.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// ChartCacheTTL returns the chart cache lifetime.
func (c Config) ChartCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Leaderboard.ChartCacheTTL)
	if err != nil {
		return 0
	}
	return d
}

// LoadDotEnv loads environment files, ignoring ones that do not exist.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}
