package main

import (
	"errors"
	"os"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/assets"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/config"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/logging"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

// Exit codes for the md2wechat CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, theme input, or validation
	ExitIO      = 3 // File not found, permission denied, write failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrListen) ||
		errors.Is(err, vault.ErrNoteNotFound) ||
		errors.Is(err, vault.ErrNotDirectory) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrStdoutMultiple) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, theme.ErrDuplicateName) ||
		errors.Is(err, theme.ErrEmptyThemeName) ||
		errors.Is(err, theme.ErrEmptyThemeCSS) ||
		errors.Is(err, theme.ErrInvalidThemeCSS) ||
		errors.Is(err, theme.ErrThemeNotFound) ||
		errors.Is(err, theme.ErrBuiltinReadOnly) ||
		errors.Is(err, vault.ErrOutsideVault) ||
		errors.Is(err, vault.ErrNotMarkdown) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, md2wechat.ErrCSSInline) {
		return ExitUsage
	}

	return ExitGeneral
}
