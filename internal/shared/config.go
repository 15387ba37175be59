package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const defaultPageDelay = 200 * time.Millisecond

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	YouTube   YouTubeConfig    `toml:"youtube"`
	Backup    BackupConfig     `toml:"backup"`
	Database  DatabaseConfig   `toml:"database"`
	Playlists []PlaylistConfig `toml:"playlists"`
}

// YouTubeConfig contains YouTube Data API credentials and pagination settings.
type YouTubeConfig struct {
	APIKey      string `toml:"api_key"`
	AccessToken string `toml:"access_token"`
	Client      string `toml:"client"`
	BaseURL     string `toml:"base_url"`
	PageSize    int    `toml:"page_size"`
	PageDelay   string `toml:"page_delay"`
}

// BackupConfig contains defaults applied to every backed up playlist.
type BackupConfig struct {
	OutputDir     string `toml:"output_dir"`
	NewVideosLast bool   `toml:"new_videos_last"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlaylistConfig describes a single tracked playlist.
//
// NewVideosLast is optional and falls back to [BackupConfig.NewVideosLast].
type PlaylistConfig struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	NewVideosLast *bool  `toml:"new_videos_last"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// SaveConfig writes the configuration to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// PageDelay parses the configured inter-page delay, falling back to 200ms.
func (c *Config) PageDelay() (time.Duration, error) {
	raw := strings.TrimSpace(c.YouTube.PageDelay)
	if raw == "" {
		return defaultPageDelay, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page_delay %q: %v", ErrInvalidConfig, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: page_delay must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// Validate checks the settings that would otherwise fail mid-cycle.
func (c *Config) Validate() error {
	switch strings.TrimSpace(c.YouTube.Client) {
	case "", "rest", "google":
	default:
		return fmt.Errorf("%w: unknown youtube client %q", ErrInvalidConfig, c.YouTube.Client)
	}

	if c.YouTube.PageSize < 0 || c.YouTube.PageSize > 50 {
		return fmt.Errorf("%w: page_size must be between 1 and 50, got %d", ErrInvalidConfig, c.YouTube.PageSize)
	}
	if _, err := c.PageDelay(); err != nil {
		return err
	}

	names := make(map[string]string, len(c.Playlists))
	for i, p := range c.Playlists {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: playlists[%d] has no id", ErrInvalidConfig, i)
		}
		name := p.DisplayName()
		if other, ok := names[name]; ok {
			return fmt.Errorf("%w: playlists %s and %s share the output name %q", ErrInvalidConfig, other, p.ID, name)
		}
		names[name] = p.ID
	}
	return nil
}

// Playlist returns the configured entry for the given playlist ID.
func (c *Config) Playlist(id string) (PlaylistConfig, bool) {
	for _, p := range c.Playlists {
		if p.ID == id {
			return p, true
		}
	}
	return PlaylistConfig{}, false
}

// DisplayName returns the name used for output files, defaulting to the playlist ID.
func (p PlaylistConfig) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return p.ID
	}
	return p.Name
}

// AppendsToEnd resolves the direction flag for this playlist.
func (p PlaylistConfig) AppendsToEnd(fallback bool) bool {
	if p.NewVideosLast == nil {
		return fallback
	}
	return *p.NewVideosLast
}

// ResolveOutputDir returns dir, or the working directory when dir is empty,
// and verifies that it exists and is a directory.
func ResolveOutputDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: failed to get working directory: %v", ErrInvalidConfig, err)
		}
		return wd, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: output directory %s: %v", ErrInvalidConfig, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: output path %s is not a directory", ErrInvalidConfig, dir)
	}
	return dir, nil
}
