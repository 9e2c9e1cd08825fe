// Package config loads kestrel's configuration via viper, binding a
// user-scoped YAML file, environment variables, and flags into a single
// mapstructure-tagged Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AppName is used to derive the cache directory and the env var prefix.
const AppName = "kestrel"

// Config is the complete kestrel configuration.
type Config struct {
	Project    ProjectConfig    `mapstructure:"project"`
	Supervisor SupervisorConfig `mapstructure:"supervisor"`
	Terminal   TerminalConfig   `mapstructure:"terminal"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Agents     AgentsConfig     `mapstructure:"agents"`
}

// ProjectConfig names the repository this invocation of kestrel operates on.
type ProjectConfig struct {
	// Name is the repository nickname used in worktree and tmux session names.
	Name string `mapstructure:"name"`
	// RepoPath is the absolute path to the source repository.
	RepoPath string `mapstructure:"repo_path"`
	// BaseBranch is used as the default base for new branches ("main" if empty).
	BaseBranch string `mapstructure:"base_branch"`
}

// SupervisorConfig controls the background polling loop.
type SupervisorConfig struct {
	// PollIntervalSeconds is the cadence at which each supervisor refreshes
	// stats and liveness. Defaults to 5.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

// TerminalConfig controls the embedded terminal's default geometry.
type TerminalConfig struct {
	Rows int `mapstructure:"rows"`
	Cols int `mapstructure:"cols"`
}

// CleanupConfig controls retention of terminal session records.
type CleanupConfig struct {
	// MaxAgeDays is how long a terminal (Completed/Failed) record is kept
	// before cleanup_old evicts it. 0 disables automatic eviction.
	MaxAgeDays int `mapstructure:"max_age_days"`
	// KeepProtectedBranches prevents deletion of "main"/"master" regardless
	// of any other setting (always true; kept for documentation purposes).
	KeepProtectedBranches bool `mapstructure:"keep_protected_branches"`
}

// NotifyConfig controls desktop notifications.
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AgentsConfig lists which agent adapters are enabled and their CLI overrides.
type AgentsConfig struct {
	Default string            `mapstructure:"default"`
	Command map[string]string `mapstructure:"command"`
}

// Load reads configuration from $HOME/.config/kestrel/config.yaml (or the
// file named by the "config" key, e.g. the bound --config flag), the
// environment (prefixed KESTREL_), and any flags already bound to v, then
// decodes it into a Config with defaults filled in.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix("KESTREL")
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		configDir, err := os.UserConfigDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(configDir, AppName))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Project.BaseBranch == "" {
		cfg.Project.BaseBranch = "main"
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("supervisor.poll_interval_seconds", 5)
	v.SetDefault("terminal.rows", 50)
	v.SetDefault("terminal.cols", 200)
	v.SetDefault("cleanup.max_age_days", 30)
	v.SetDefault("cleanup.keep_protected_branches", true)
	v.SetDefault("notify.enabled", true)
	v.SetDefault("agents.default", "claude")
}

// CacheDir returns "<user-cache>/kestrel", creating it if necessary.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	return dir, nil
}

// WorktreesDir returns "<cache>/worktrees", creating it if necessary.
func WorktreesDir() (string, error) {
	cache, err := CacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cache, "worktrees")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create worktrees dir: %w", err)
	}
	return dir, nil
}

// AgentsLogDir returns "<cache>/agents", creating it if necessary.
func AgentsLogDir() (string, error) {
	cache, err := CacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cache, "agents")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create agents log dir: %w", err)
	}
	return dir, nil
}

// SessionsFile returns "<cache>/sessions.json".
func SessionsFile() (string, error) {
	cache, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cache, "sessions.json"), nil
}
