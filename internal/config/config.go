package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// RepoConfigName is the per-repository config file looked up in the watched
// repository root.
const RepoConfigName = ".autosnap.json"

// Config holds all configurable autosnap settings. Interval fields are JSON
// integers in seconds.
type Config struct {
	FilePatterns         []string `json:"file_patterns"`
	IgnorePatterns       []string `json:"ignore_patterns"`
	BackupBranchPrefix   string   `json:"backup_branch_prefix"`
	MaxBackupBranches    int      `json:"max_backup_branches"`
	CommitCooldown       int      `json:"commit_cooldown"`
	DebounceWindow       int      `json:"debounce_window"`
	BackupInterval       int      `json:"backup_interval"`
	CreateBackupBranches *bool    `json:"create_backup_branches"`
	LogFile              string   `json:"log_file"`
}

// Cooldown returns the minimum interval between two commits.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CommitCooldown) * time.Second
}

// Debounce returns the inactivity window required before pending changes
// are considered settled.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceWindow) * time.Second
}

// BackupEvery returns the minimum interval between backup branches.
// Zero means a backup on every commit.
func (c Config) BackupEvery() time.Duration {
	return time.Duration(c.BackupInterval) * time.Second
}

// BackupsEnabled reports whether backup branch rotation is on.
func (c Config) BackupsEnabled() bool {
	return c.CreateBackupBranches == nil || *c.CreateBackupBranches
}

// Defaults returns the default configuration: track common source, web and
// documentation files, ignore VCS metadata, dependency trees, build output
// and editor droppings.
func Defaults() Config {
	enabled := true
	return Config{
		FilePatterns: []string{
			// Source files
			"**/*.py", "**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx",
			"**/*.java", "**/*.cpp", "**/*.c", "**/*.h", "**/*.cs",
			"**/*.go", "**/*.rb", "**/*.php", "**/*.swift", "**/*.kt",
			"**/*.rs", "**/*.zig",
			// Web assets
			"**/*.html", "**/*.css", "**/*.scss", "**/*.sass",
			"**/*.less", "**/*.vue", "**/*.svelte",
			// Config and documentation
			"**/*.json", "**/*.yml", "**/*.yaml", "**/*.toml",
			"**/*.xml", "**/*.md", "**/*.markdown",
			"**/README*", "**/LICENSE*", "**/Makefile",
		},
		IgnorePatterns: []string{
			// Version control
			"**/.git/**", "**/.svn/**", "**/.hg/**",
			// Dependencies and package managers
			"**/node_modules/**", "**/venv/**", "**/.virtualenv/**",
			"**/vendor/**", "**/.bundle/**",
			// Build output
			"**/build/**", "**/dist/**", "**/out/**",
			"**/target/**", "**/bin/**", "**/obj/**",
			// Caches and temp files
			"**/__pycache__/**", "**/.cache/**", "**/.temp/**", "**/.tmp/**",
			// IDE state
			"**/.idea/**", "**/.vscode/**", "**/.vs/**",
			// Logs and autosnap's own state
			"**/logs/**", "**/*.log", "**/.autosnap/**",
			// OS and editor droppings
			"**/.DS_Store", "**/Thumbs.db", "**/*.swp", "**/*.swo",
		},
		BackupBranchPrefix:   "autosnap",
		MaxBackupBranches:    5,
		CommitCooldown:       5,
		DebounceWindow:       2,
		BackupInterval:       0,
		CreateBackupBranches: &enabled,
		LogFile:              filepath.Join(".autosnap", "autosnap.log"),
	}
}

// LoadGlobal reads ~/.config/autosnap/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "autosnap", "config.json")
	return loadFile(path, true)
}

// LoadRepo reads the repo-local config from the watched repository root.
// Returns nil (no error) if the file is absent.
func LoadRepo(repoPath string) (*Config, error) {
	return loadFile(filepath.Join(repoPath, RepoConfigName), false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and repo configs, with repo taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, repo *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, repo} {
		if c == nil {
			continue
		}
		if len(c.FilePatterns) > 0 {
			result.FilePatterns = c.FilePatterns
		}
		if len(c.IgnorePatterns) > 0 {
			result.IgnorePatterns = c.IgnorePatterns
		}
		if c.BackupBranchPrefix != "" {
			result.BackupBranchPrefix = c.BackupBranchPrefix
		}
		if c.MaxBackupBranches > 0 {
			result.MaxBackupBranches = c.MaxBackupBranches
		}
		if c.CommitCooldown > 0 {
			result.CommitCooldown = c.CommitCooldown
		}
		if c.DebounceWindow > 0 {
			result.DebounceWindow = c.DebounceWindow
		}
		if c.BackupInterval > 0 {
			result.BackupInterval = c.BackupInterval
		}
		if c.CreateBackupBranches != nil {
			result.CreateBackupBranches = c.CreateBackupBranches
		}
		if c.LogFile != "" {
			result.LogFile = c.LogFile
		}
	}
	return result
}

// WriteDefault writes the default configuration to the repo-local config
// file, pretty-printed. Fails with os.ErrExist if the file already exists.
func WriteDefault(repoPath string) (string, error) {
	path := filepath.Join(repoPath, RepoConfigName)
	if _, err := os.Stat(path); err == nil {
		return path, os.ErrExist
	}
	d := Defaults()
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return path, err
	}
	return path, os.WriteFile(path, append(data, '\n'), 0644)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
