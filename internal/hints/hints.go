// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForListen returns hints for preview server bind errors.
// Inside containers or over SSH a loopback address is unreachable from the
// user's browser.
func ForListen(addr string) string {
	var hints []string

	hints = append(hints, "use --listen to pick another address")

	remote := os.Getenv("SSH_CONNECTION") != "" || IsInContainer()
	if remote && strings.HasPrefix(addr, "127.") {
		hints = append(hints, "listen on 0.0.0.0 to reach the preview from the host")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/md2wechat/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(toSlash(p), "/md2wechat/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForThemeNotFound lists the themes the user can pick from.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForDuplicateTheme explains the case-insensitive name rule.
func ForDuplicateTheme() string {
	return format("theme names are compared case-insensitively; pick another name")
}

// ForInvalidThemeCSS shows the minimal accepted stylesheet shape.
func ForInvalidThemeCSS() string {
	return format(`CSS needs at least one rule block, e.g. "#md2wechat h1 { color: #333; }"`)
}

// ForBuiltinTheme suggests copying a bundled theme before editing it.
func ForBuiltinTheme(name string) string {
	return format("built-in themes are read-only; run 'md2wechat themes show " + name +
		" > my.css' and add it with 'md2wechat themes add'")
}

// ForVault returns hints when a note or file lies outside the vault.
func ForVault() string {
	return format("use --vault to point at the notes root directory")
}

// toSlash normalizes Windows separators for substring checks.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
