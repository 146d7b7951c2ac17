package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/hints"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
)

// stdoutOutput as --output writes the HTML of a single note to stdout.
const stdoutOutput = "-"

// Sentinel errors for CLI conversion.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrWriteHTML        = errors.New("failed to write HTML file")
	ErrStdoutMultiple   = errors.New("--output - accepts a single note")
	ErrConversionFailed = errors.New("conversion failed")
)

// runConvertCmd parses convert flags and runs the conversion.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, inputs, err := parseConvertFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	return runConvert(ctx, inputs, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, inputs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return ErrNoInput
	}

	ws, err := openWorkspace(&flags.common, env)
	if err != nil {
		return err
	}
	defer func() { _ = ws.log.Sync() }()

	outputDir := flags.output
	if outputDir == "" {
		outputDir = ws.cfg.Output
	}

	files, err := discoverFiles(ws.vault, inputs, outputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, strings.Join(inputs, ", "))
	}
	if outputDir == stdoutOutput && len(files) > 1 {
		return fmt.Errorf("%w: got %d notes", ErrStdoutMultiple, len(files))
	}

	selected, pinned, err := resolveConvertTheme(ws, flags.theme)
	if err != nil {
		return err
	}

	opts := converterOptions(ws.cfg, flags.render)
	opts = append(opts, md2wechat.WithInlineFallback(!flags.strict))

	params := &conversionParams{
		conv:     md2wechat.NewConverter(opts...),
		themes:   ws.themes,
		theme:    selected,
		pinned:   pinned,
		resolver: ws.vault.Resolver(ws.vault.FileURLs()),
		log:      ws.log,
	}

	workers := resolvePoolSize(flags.workers)
	ws.log.Debug("converting",
		zap.Int("files", len(files)),
		zap.Int("workers", workers),
		zap.String("theme", selected.Name),
	)

	results := convertBatch(ctx, files, workers, params)

	if outputDir == stdoutOutput && results[0].Err == nil {
		fmt.Fprintln(env.Stdout, results[0].HTML)
	}

	failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return results[0].Err
	default:
		return fmt.Errorf("%w: %d of %d notes", ErrConversionFailed, failed, len(results))
	}
}

// resolveConvertTheme picks the theme for a run. A --theme flag pins the
// theme for every note; otherwise notes may pick their own through a
// "theme" front matter key and fall back to the returned theme, which is
// MD2WECHAT_THEME, the config theme, or the settings default in that order.
func resolveConvertTheme(ws *workspace, flagTheme string) (theme.Theme, bool, error) {
	name, pinned := flagTheme, flagTheme != ""
	if name == "" {
		name = ws.cfg.Theme
	}
	if name == "" {
		return ws.themes.Selected(), false, nil
	}

	t, err := ws.themes.Get(name)
	if err != nil {
		if errors.Is(err, theme.ErrThemeNotFound) {
			return theme.Theme{}, false, fmt.Errorf("%w%s", err, hints.ForThemeNotFound(themeNames(ws.themes)))
		}
		return theme.Theme{}, false, err
	}
	return t, pinned, nil
}

// themeNames lists every theme name in catalog order.
func themeNames(s *theme.Service) []string {
	list, _ := s.List()
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name)
	}
	return names
}
