package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/eventbus"
)

// FileName is the config file looked up in the user config directory.
const FileName = "storesearch.toml"

// Config represents the application configuration
type Config struct {
	Version     int               `toml:"version"`
	Storefront  StorefrontConfig  `toml:"storefront"`
	Search      SearchConfig      `toml:"search"`
	Placeholder PlaceholderConfig `toml:"placeholder"`
	Recent      RecentConfig      `toml:"recent"`
	Log         LogConfig         `toml:"log"`
}

// StorefrontConfig points at the section renderer.
type StorefrontConfig struct {
	BaseURL            string `toml:"base_url"`
	SuggestPath        string `toml:"suggest_path"`
	SearchPath         string `toml:"search_path"`
	ResultsID          string `toml:"results_id"`
	ResultsSection     string `toml:"results_section"`
	EmptySection       string `toml:"empty_section"`
	RecentlyViewedSect string `toml:"recently_viewed_section"`
}

// SearchConfig holds the debounce delays and fragment cache size.
type SearchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
	ResetMs    int `toml:"reset_ms"`
	CacheSize  int `toml:"cache_size"`
}

// DebounceDelay is the search keystroke debounce.
func (s SearchConfig) DebounceDelay() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// ResetDelay is the empty-input reset debounce.
func (s SearchConfig) ResetDelay() time.Duration {
	return time.Duration(s.ResetMs) * time.Millisecond
}

// PlaceholderConfig feeds the typing placeholder.
type PlaceholderConfig struct {
	Prefix        string   `toml:"prefix"`
	Categories    []string `toml:"categories"`
	ReducedMotion bool     `toml:"reduced_motion"`
}

// RecentConfig locates the recently viewed store.
type RecentConfig struct {
	Path  string `toml:"path"`
	Limit int    `toml:"limit"`
}

// LogConfig controls log level and destination.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service rooted in the user config directory.
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultPath()}
}

// NewConfigServiceAt creates a config service for an explicit file.
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path, bus: bus}
}

// DefaultPath is <user config dir>/storesearch/storesearch.toml.
func DefaultPath() string {
	return filepath.Join(appDir(), FileName)
}

func appDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "storesearch")
}

func (cs *configService) Path() string { return cs.filePath }

// Load reads the config file, falling back to defaults when it does not exist.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Save writes the config file and announces the change.
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigChangedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Missing keys keep their defaults.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, serr.Wrap(err, "failed to read config file")
	}

	cfg := DefaultConfig()
	defaults := cfg.Placeholder.Categories
	cfg.Placeholder.Categories = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, serr.Wrap(err, "failed to parse config "+path)
	}
	if cfg.Placeholder.Categories == nil {
		cfg.Placeholder.Categories = defaults
	}
	cfg.normalize()
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return serr.Wrap(err, "failed to create config directory")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return serr.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return serr.Wrap(err, "failed to write config file")
	}
	return nil
}

// normalize restores defaults for values that would break the controller.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Storefront.BaseURL == "" {
		c.Storefront.BaseURL = def.Storefront.BaseURL
	}
	if c.Storefront.SuggestPath == "" {
		c.Storefront.SuggestPath = def.Storefront.SuggestPath
	}
	if c.Storefront.SearchPath == "" {
		c.Storefront.SearchPath = def.Storefront.SearchPath
	}
	if c.Storefront.ResultsID == "" {
		c.Storefront.ResultsID = def.Storefront.ResultsID
	}
	if c.Storefront.ResultsSection == "" {
		c.Storefront.ResultsSection = def.Storefront.ResultsSection
	}
	if c.Storefront.EmptySection == "" {
		c.Storefront.EmptySection = def.Storefront.EmptySection
	}
	if c.Storefront.RecentlyViewedSect == "" {
		c.Storefront.RecentlyViewedSect = def.Storefront.RecentlyViewedSect
	}
	if c.Search.DebounceMs <= 0 {
		c.Search.DebounceMs = def.Search.DebounceMs
	}
	if c.Search.ResetMs <= 0 {
		c.Search.ResetMs = def.Search.ResetMs
	}
	if c.Search.CacheSize <= 0 {
		c.Search.CacheSize = def.Search.CacheSize
	}
	if c.Recent.Path == "" {
		c.Recent.Path = def.Recent.Path
	}
	if c.Recent.Limit <= 0 {
		c.Recent.Limit = def.Recent.Limit
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := appDir()
	return &Config{
		Version: 1,
		Storefront: StorefrontConfig{
			BaseURL:            "http://localhost:8080",
			SuggestPath:        "/search/suggest",
			SearchPath:         "/search",
			ResultsID:          "predictive-search-results",
			ResultsSection:     "predictive-search",
			EmptySection:       "predictive-search-empty",
			RecentlyViewedSect: "recently-viewed",
		},
		Search: SearchConfig{
			DebounceMs: 200,
			ResetMs:    100,
			CacheSize:  64,
		},
		Placeholder: PlaceholderConfig{
			Prefix:     "Search for",
			Categories: []string{"shoes", "jackets", "gifts"},
		},
		Recent: RecentConfig{
			Path:  filepath.Join(dir, "recently-viewed.msgpack"),
			Limit: 12,
		},
		Log: LogConfig{
			Level: "info",
			File:  "storesearch.log",
		},
	}
}
