package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by resolveConfigPath when no file exists in any
// default location. Load treats it as "use the defaults".
var ErrNoConfig = errors.New("no config file found")

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults() when none exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
// The path is empty when the defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if errors.Is(err, ErrNoConfig) {
		cfg := Defaults()
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
		resolvePaths(cfg)
		return cfg, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = filepath.Dir(absPath)
	resolvePaths(cfg)

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolvePaths expands "~/" and makes relative file paths absolute against BaseDir.
func resolvePaths(cfg *Config) {
	cfg.REPL.HistoryFile = expandHome(cfg.REPL.HistoryFile)

	// Only sqlite DSNs are file paths
	if cfg.History.Driver == "sqlite" && cfg.History.DSN != "" && !strings.HasPrefix(cfg.History.DSN, "file:") {
		dsn := expandHome(cfg.History.DSN)
		if dsn != ":memory:" && !filepath.IsAbs(dsn) && cfg.BaseDir != "" {
			dsn = filepath.Join(cfg.BaseDir, dsn)
		}
		cfg.History.DSN = dsn
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.History.Enabled {
		switch cfg.History.Driver {
		case "sqlite", "postgres", "mysql":
		default:
			errs = append(errs, fmt.Sprintf("invalid history driver: %s (must be sqlite, postgres, or mysql)", cfg.History.Driver))
		}
		if cfg.History.DSN == "" {
			errs = append(errs, "history.dsn is required when history is enabled")
		}
	}
	if cfg.History.MaxEntries < 0 {
		errs = append(errs, fmt.Sprintf("invalid history.max_entries: %d (must be 0 or more)", cfg.History.MaxEntries))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch.debounce: %s", cfg.Watch.Debounce))
	}
	for i, ext := range cfg.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("watch.extensions[%d]: %q must start with '.'", i, ext))
		}
	}

	if cfg.Run.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("invalid run.timeout: %s", cfg.Run.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > QUILL_CONFIG env > ./quill.yaml > ~/.config/quill/quill.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("QUILL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("QUILL_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("quill.yaml"); err == nil {
		return "quill.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "quill", "quill.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", ErrNoConfig
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
