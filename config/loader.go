package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "code2vec.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/code2vec"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load builds the configuration from its layers, lowest precedence first:
// defaults, the user config (~/.config/code2vec/config.yaml), then either
// explicitPath or the nearest code2vec.yaml, then overrides from flags.
//
// File layers are decoded onto the accumulated config, so a file only changes
// the keys it names and may set zero values. An explicit file must load; the
// user and project files are skipped with a warning when broken.
func (l *Loader) Load(explicitPath string, overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	if path := l.userConfigPath(); path != "" {
		l.applyOptional(cfg, "user", path)
	}

	switch {
	case explicitPath != "":
		if err := cfg.ApplyFile(explicitPath); err != nil {
			return nil, err
		}
		l.logger.Debug("Applied config layer", slog.String("layer", "explicit"), slog.String("path", explicitPath))
	default:
		if path := l.findProjectConfig(); path != "" {
			l.applyOptional(cfg, "project", path)
		} else {
			l.logger.Debug("No project config found")
		}
	}

	cfg.Merge(overrides)

	if cfg.Repo.Path == "" {
		cfg.Repo.Path = l.detectRepoRoot()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOptional applies a config file that may be missing or broken.
func (l *Loader) applyOptional(cfg *Config, layer, path string) {
	err := cfg.ApplyFile(path)
	switch {
	case err == nil:
		l.logger.Debug("Applied config layer", slog.String("layer", layer), slog.String("path", path))
	case errors.Is(err, fs.ErrNotExist):
	default:
		l.logger.Warn("Skipping config layer",
			slog.String("layer", layer),
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// detectRepoRoot returns the git toplevel, or the working directory outside a repository.
func (l *Loader) detectRepoRoot() string {
	if root := l.detectGitRoot(); root != "" {
		l.logger.Debug("Auto-detected git root", slog.String("path", root))
		return root
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	l.logger.Debug("Using current directory as repo root", slog.String("path", cwd))
	return cwd
}

// EnsureUserConfig writes the defaults to the user config path unless a file is already there.
func (l *Loader) EnsureUserConfig() error {
	path := l.userConfigPath()
	if path == "" {
		return errors.New("cannot determine home directory")
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := DefaultConfig().SaveToFile(path); err != nil {
		return err
	}
	l.logger.Info("Created default user config", slog.String("path", path))
	return nil
}

func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig returns the nearest code2vec.yaml walking up from the working directory.
func (l *Loader) findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (l *Loader) detectGitRoot() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
