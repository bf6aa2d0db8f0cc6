package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// RetentionDays is how long tombstoned entities survive before the
	// sweeper may purge them permanently.
	RetentionDays int `json:"retention_days"`

	// DisablePurge switches the background sweeper off.
	// Manual purge operations ignore this flag.
	DisablePurge bool `json:"disable_purge,omitempty"`

	// SweepIntervalMinutes is the period of the background sweeper loop.
	SweepIntervalMinutes int `json:"sweep_interval_minutes"`

	// ParagraphMaxChars is the character budget for paragraph chunks.
	ParagraphMaxChars int `json:"paragraph_max_chars"`

	// LegacyVersioning switches the document ledger into single-version
	// compatibility mode: document edits update the document row in place
	// and no version history is kept. This mirrors stores created before
	// the document_versions table existed. Resolved once at startup,
	// never probed per request.
	LegacyVersioning bool `json:"legacy_versioning,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of entity type names whose tools are all
	// excluded from registration, e.g. "folder" disables every folder_* tool.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:        30,
		SweepIntervalMinutes: 60,
		ParagraphMaxChars:    2500,
	}
}

// PurgeEnabled reports whether the background sweeper should purge.
func (c *Config) PurgeEnabled() bool {
	return !c.DisablePurge
}

// SweepInterval returns the sweeper period as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.seam.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.seam) and repo (.seam)
// directories. Repo config is found by walking upward from startDir to find
// the nearest .seam/config.json. Repo config takes precedence for scalar
// values; arrays are merged (deduplicated). Either or both configs may be
// missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .seam/config.json. Returns the path if found, or empty string if not.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".seam", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.RetentionDays = overlay.RetentionDays
	if result.RetentionDays == 0 {
		result.RetentionDays = base.RetentionDays
	}

	result.SweepIntervalMinutes = overlay.SweepIntervalMinutes
	if result.SweepIntervalMinutes == 0 {
		result.SweepIntervalMinutes = base.SweepIntervalMinutes
	}

	result.ParagraphMaxChars = overlay.ParagraphMaxChars
	if result.ParagraphMaxChars == 0 {
		result.ParagraphMaxChars = base.ParagraphMaxChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: either layer may switch the behavior on.
	result.DisablePurge = base.DisablePurge || overlay.DisablePurge
	result.LegacyVersioning = base.LegacyVersioning || overlay.LegacyVersioning

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
