package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/config"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string // MD2WECHAT_CONFIG: config file name or path
	Theme      string // MD2WECHAT_THEME: theme used by convert
	LogLevel   string // MD2WECHAT_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid MD2WECHAT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2WECHAT_CONFIG":    true,
	"MD2WECHAT_THEME":     true,
	"MD2WECHAT_LOG_LEVEL": true,
}

// loadEnvConfig reads the MD2WECHAT_* variables through getenv.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: strings.TrimSpace(getenv("MD2WECHAT_CONFIG")),
		Theme:      strings.TrimSpace(getenv("MD2WECHAT_THEME")),
		LogLevel:   strings.TrimSpace(getenv("MD2WECHAT_LOG_LEVEL")),
	}
}

// warnUnknownEnvVars prints a warning for every unrecognized MD2WECHAT_*
// variable in environ.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "MD2WECHAT_") {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays environment values on cfg.
// Precedence is CLI flags > env vars > config file > defaults; flags are
// applied afterwards by each command.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Theme = env.Theme
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
