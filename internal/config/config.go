// Package config loads the md2wechat.yaml CLI configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/logging"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// DefaultName is the config file searched for when none is given.
const DefaultName = "md2wechat"

// DefaultListen is the preview server address.
const DefaultListen = "127.0.0.1:8765"

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxThemeNameLength = 100
	MaxListenLength    = 255
)

// Config holds the CLI configuration.
type Config struct {
	Vault    string         `yaml:"vault"`    // Vault root (empty = current directory)
	Settings string         `yaml:"settings"` // Settings file (empty = <vault>/.md2wechat/settings.json)
	Theme    string         `yaml:"theme"`    // Theme override (empty = settings default)
	Output   string         `yaml:"output"`   // Output directory for convert (empty = next to source)
	Assets   string         `yaml:"assets"`   // Style directory overriding bundled themes
	Preview  PreviewConfig  `yaml:"preview"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Log      LogConfig      `yaml:"log"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Listen string `yaml:"listen"`
	Open   bool   `yaml:"open"` // Open the page in a browser on start
}

// MarkdownConfig toggles rendering features.
type MarkdownConfig struct {
	Emoji       *bool `yaml:"emoji"`       // nil = enabled
	Highlights  bool  `yaml:"highlights"`  // ==text== to <mark>
	KeepClasses bool  `yaml:"keepClasses"` // Keep class attributes after inlining
	HardWraps   bool  `yaml:"hardWraps"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// EmojiEnabled reports the effective emoji setting.
func (m MarkdownConfig) EmojiEnabled() bool { return m.Emoji == nil || *m.Emoji }

// Validate checks lengths and enumerated values.
// Called by LoadConfig; available for callers building a Config by hand.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name, value string
		max         int
	}{
		{"vault", c.Vault, MaxPathLength},
		{"settings", c.Settings, MaxPathLength},
		{"output", c.Output, MaxPathLength},
		{"assets", c.Assets, MaxPathLength},
		{"theme", c.Theme, MaxThemeNameLength},
		{"preview.listen", c.Preview.Listen, MaxListenLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Preview.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Preview.Listen); err != nil {
			return fmt.Errorf("%w: preview.listen %q: %v", ErrInvalidField, c.Preview.Listen, err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidField, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidField, c.Log.Format)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Preview: PreviewConfig{Listen: DefaultListen},
		Log:     LogConfig{Level: "info", Format: logging.FormatConsole},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the locations tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "md2wechat", name+ext))
		}
	}
	return paths
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries the current directory, then the user config directory
// (~/.config/md2wechat/), with .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
