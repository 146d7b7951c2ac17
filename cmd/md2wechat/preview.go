package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/config"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/hints"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/preview"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

// ErrListen is returned when the preview address cannot be bound.
var ErrListen = errors.New("cannot listen")

// runPreviewCmd parses preview flags and serves until ctx is done.
func runPreviewCmd(ctx context.Context, args []string, env *Environment) error {
	flags, rest, err := parsePreviewFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("%w: preview takes at most one note, got %d", ErrUsage, len(rest))
	}

	ws, err := openWorkspace(&flags.common, env)
	if err != nil {
		return err
	}
	defer func() { _ = ws.log.Sync() }()

	note, err := initialNote(ws.vault, rest)
	if err != nil {
		return err
	}

	opts := converterOptions(ws.cfg, flags.render)
	opts = append(opts, md2wechat.WithInlineFallback(true))
	srv := preview.New(preview.Config{
		Converter:    md2wechat.NewConverter(opts...),
		Vault:        ws.vault,
		Themes:       ws.themes,
		Settings:     ws.repo,
		SettingsPath: ws.settingsPath,
		Logger:       ws.log,
	})
	if err := srv.Open(ctx, note); err != nil {
		return fmt.Errorf("opening %s: %w", note, err)
	}

	addr := resolveListen(flags.listen, ws.cfg)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v%s", ErrListen, addr, err, hints.ForListen(addr))
	}

	url := "http://" + ln.Addr().String() + "/"
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Preview at %s (Ctrl+C to stop)\n", url)
	}
	ws.log.Info("preview started", zap.String("url", url), zap.String("note", note))

	if flags.open || ws.cfg.Preview.Open {
		if err := env.OpenURL(ctx, url); err != nil {
			ws.log.Warn("cannot open browser", zap.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, ln) })
	g.Go(func() error { return srv.Watch(gctx) })
	err = g.Wait()

	ws.log.Info("preview stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolveListen picks the listen address: flag > config > default.
func resolveListen(flagListen string, cfg *config.Config) string {
	if flagListen != "" {
		return flagListen
	}
	if cfg.Preview.Listen != "" {
		return cfg.Preview.Listen
	}
	return config.DefaultListen
}

// initialNote resolves the note opened on start. args holds at most one
// path, either on disk or vault-relative. Without one the first note of the
// vault is used, and an empty vault opens nothing.
func initialNote(v *vault.Vault, args []string) (string, error) {
	if len(args) == 0 {
		notes, err := v.Notes()
		if err != nil {
			return "", fmt.Errorf("listing notes: %w", err)
		}
		if len(notes) == 0 {
			return "", nil
		}
		return notes[0], nil
	}

	arg := args[0]
	if err := validateMarkdownExtension(arg); err != nil {
		return "", err
	}
	if fileutil.FileExists(arg) {
		rel, err := v.Rel(arg)
		if err != nil {
			return "", fmt.Errorf("%w%s", err, hints.ForVault())
		}
		return rel, nil
	}
	rel := filepath.ToSlash(arg)
	if !v.Exists(rel) {
		return "", fmt.Errorf("%w: %s", vault.ErrNoteNotFound, arg)
	}
	return rel, nil
}
