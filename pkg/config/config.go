// Package config handles loading and saving taxo configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/taxo/config.yaml
//   - Data:    ~/.local/share/taxo/ (exported snapshots)
//   - State:   ~/.local/state/taxo/ (wizard state cache)
//
// TAXO_CONFIG_DIR overrides the config directory entirely, which the
// tests and sandboxed installs rely on.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog represents a registered catalog source in the config.
type Catalog struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultSort string `yaml:"default_sort,omitempty"` // name, skus, updated
	MaxTagCount int    `yaml:"max_tag_count,omitempty"`
	ShowRetired bool   `yaml:"show_retired,omitempty"`
	Theme       string `yaml:"theme,omitempty"` // dark, light
}

// DiscoveryConfig controls auto-discovery of catalog sources.
type DiscoveryConfig struct {
	ScanPaths     []string `yaml:"scan_paths,omitempty"` // Directories to probe for catalogs
	DisableSQLite bool     `yaml:"disable_sqlite,omitempty"`
}

// Config is the top-level configuration for taxo.
type Config struct {
	Catalogs  []Catalog       `yaml:"catalogs,omitempty"`
	Favorites map[int]string  `yaml:"favorites,omitempty"` // Number key (1-9) -> catalog name
	UI        UIConfig        `yaml:"ui,omitempty"`
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Favorites: make(map[int]string),
		UI: UIConfig{
			DefaultSort: "name",
			MaxTagCount: 4,
		},
	}
}

// ConfigDir returns the config directory for taxo. TAXO_CONFIG_DIR wins
// over XDG_CONFIG_HOME.
func ConfigDir() string {
	if dir := os.Getenv("TAXO_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "taxo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taxo")
}

// DataDir returns the XDG data directory for taxo.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "taxo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "taxo")
}

// StateDir returns the XDG state directory for taxo.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "taxo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "taxo")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Favorites == nil {
		cfg.Favorites = make(map[int]string)
	}

	// Expand ~ in catalog paths
	for i := range cfg.Catalogs {
		cfg.Catalogs[i].Path = expandHome(cfg.Catalogs[i].Path)
	}
	for i := range cfg.Discovery.ScanPaths {
		cfg.Discovery.ScanPaths[i] = expandHome(cfg.Discovery.ScanPaths[i])
	}

	return cfg, nil
}

// Save writes the config to the config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindCatalog returns the catalog with the given name, or nil.
func (c Config) FindCatalog(name string) *Catalog {
	for i := range c.Catalogs {
		if strings.EqualFold(c.Catalogs[i].Name, name) {
			return &c.Catalogs[i]
		}
	}
	return nil
}

// FavoriteCatalog returns the catalog assigned to number key n (1-9), or nil.
func (c Config) FavoriteCatalog(n int) *Catalog {
	name, ok := c.Favorites[n]
	if !ok {
		return nil
	}
	return c.FindCatalog(name)
}

// SetFavorite assigns a catalog name to a number key (1-9).
func (c *Config) SetFavorite(n int, catalogName string) {
	if c.Favorites == nil {
		c.Favorites = make(map[int]string)
	}
	if catalogName == "" {
		delete(c.Favorites, n)
	} else {
		c.Favorites[n] = catalogName
	}
}

// ResolvedPath returns the catalog path with ~ expanded.
func (c Catalog) ResolvedPath() string {
	return expandHome(c.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
