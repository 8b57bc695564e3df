package config

import "time"

// Config represents the complete Quill configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	REPL    REPLConfig    `yaml:"repl"`
	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
	Run     RunConfig     `yaml:"run"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	Prompt       string `yaml:"prompt"`
	Continuation string `yaml:"continuation"` // Prompt shown while a block is still open
	HistoryFile  string `yaml:"history_file"` // Line history; "~/" is expanded, empty disables it
}

// HistoryConfig holds run history settings
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Driver     string `yaml:"driver"`      // sqlite, postgres or mysql
	DSN        string `yaml:"dsn"`         // sqlite file path or database connection string
	MaxEntries int    `yaml:"max_entries"` // Oldest runs beyond this are deleted (0 = unlimited)
	Locale     string `yaml:"locale"`      // Locale for timestamps in `quill history`, e.g. "fr_FR"
}

// WatchConfig holds --watch settings
type WatchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	Extensions StringOrSlice `yaml:"extensions"` // Files that --watch accepts
}

// RunConfig holds script execution settings
type RunConfig struct {
	Stdin   bool          `yaml:"stdin"`   // Whether read() may consume stdin
	Timeout time.Duration `yaml:"timeout"` // 0 = no limit
}

// StringOrSlice is a type that can unmarshal from either a string or []string
type StringOrSlice []string

// UnmarshalYAML implements custom unmarshaling for StringOrSlice
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err != nil {
		return err
	}
	*s = multi
	return nil
}

// Contains checks if the slice contains a specific string
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible default values
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:       "quill> ",
			Continuation: "....> ",
			HistoryFile:  "~/.quill_history",
		},
		History: HistoryConfig{
			Enabled:    false,
			Driver:     "sqlite",
			DSN:        ".quill/history.db",
			MaxEntries: 1000,
			Locale:     "en_US",
		},
		Watch: WatchConfig{
			Debounce:   100 * time.Millisecond,
			Extensions: StringOrSlice{".ql"},
		},
		Run: RunConfig{
			Stdin: true,
		},
	}
}
