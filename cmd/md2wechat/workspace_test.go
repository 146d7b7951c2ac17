package main

// Notes:
// - loadConfig without a name searches the working directory and the user
//   config directory; that branch is not tested because a developer's own
//   config would change the outcome.
// - converterOptions is checked through a conversion, the options being
//   opaque closures.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadConfig - Flag and env sources
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("theme: ink\npreview:\n  listen: 127.0.0.1:9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("them: ink\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		flag      string
		env       string
		wantTheme string
		wantErr   error
	}{
		{name: "flag path", flag: good, wantTheme: "ink"},
		{name: "env path", env: good, wantTheme: "ink"},
		{name: "flag wins over env", flag: good, env: bad, wantTheme: "ink"},
		{name: "strict parse", flag: bad, wantErr: config.ErrConfigParse},
		{name: "missing file", flag: filepath.Join(dir, "none.yaml"), wantErr: config.ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := loadConfig(tt.flag, &envConfig{ConfigPath: tt.env})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Theme != tt.wantTheme {
				t.Errorf("Theme = %q, want %q", cfg.Theme, tt.wantTheme)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeCommonFlags - Flags over config
// ---------------------------------------------------------------------------

func TestMergeCommonFlags(t *testing.T) {
	t.Parallel()

	t.Run("set flags override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Vault, cfg.Settings, cfg.Assets = "cfg-vault", "cfg.json", "cfg-assets"
		mergeCommonFlags(&commonFlags{vault: "v", settings: "s.json", assetPath: "a", logLevel: "warn"}, cfg)

		if cfg.Vault != "v" || cfg.Settings != "s.json" || cfg.Assets != "a" {
			t.Errorf("paths = %q %q %q, want flag values", cfg.Vault, cfg.Settings, cfg.Assets)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
		}
	})

	t.Run("empty flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Vault = "cfg-vault"
		mergeCommonFlags(&commonFlags{}, cfg)

		if cfg.Vault != "cfg-vault" || cfg.Log.Level != "info" {
			t.Errorf("cfg = %+v, want unchanged", cfg)
		}
	})

	t.Run("verbose beats quiet and log-level", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeCommonFlags(&commonFlags{verbose: true, quiet: true, logLevel: "warn"}, cfg)
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
		}
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeCommonFlags(&commonFlags{quiet: true}, cfg)
		if cfg.Log.Level != "error" {
			t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveSettingsPath
// ---------------------------------------------------------------------------

func TestResolveSettingsPath(t *testing.T) {
	t.Parallel()

	root := filepath.Join("home", "vault")
	if got, want := resolveSettingsPath(root, ""), filepath.Join(root, ".md2wechat", "settings.json"); got != want {
		t.Errorf("default = %q, want %q", got, want)
	}
	if got := resolveSettingsPath(root, "elsewhere.json"); got != "elsewhere.json" {
		t.Errorf("override = %q, want elsewhere.json", got)
	}
}

// ---------------------------------------------------------------------------
// TestConverterOptions - Config and flag toggles
// ---------------------------------------------------------------------------

func TestConverterOptions(t *testing.T) {
	t.Parallel()

	off := false
	tests := []struct {
		name      string
		markdown  config.MarkdownConfig
		flags     renderFlags
		wantEmoji bool
		wantMark  bool
	}{
		{name: "defaults", wantEmoji: true},
		{name: "flags toggle", flags: renderFlags{noEmoji: true, highlights: true}, wantMark: true},
		{name: "config toggles", markdown: config.MarkdownConfig{Emoji: &off, Highlights: true}, wantMark: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Markdown = tt.markdown
			conv := md2wechat.NewConverter(converterOptions(cfg, tt.flags)...)

			res, err := conv.Convert(context.Background(), md2wechat.Input{Markdown: ":rocket: ==hi=="})
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if got := strings.Contains(res.HTML, "🚀"); got != tt.wantEmoji {
				t.Errorf("emoji rendered = %v, want %v\n%s", got, tt.wantEmoji, res.HTML)
			}
			if got := strings.Contains(res.HTML, "<mark"); got != tt.wantMark {
				t.Errorf("mark rendered = %v, want %v\n%s", got, tt.wantMark, res.HTML)
			}
		})
	}
}
