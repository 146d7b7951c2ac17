package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/assets"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/config"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/hints"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/logging"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/settings"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

// settingsRel is the settings file location inside a vault.
var settingsRel = filepath.Join(".md2wechat", "settings.json")

// workspace bundles everything a command needs to convert notes of one vault.
type workspace struct {
	cfg          *config.Config
	vault        *vault.Vault
	repo         *settings.Repository
	themes       *theme.Service
	settingsPath string
	log          *zap.Logger
}

// openWorkspace loads configuration and opens the vault, its settings and
// the theme catalog.
func openWorkspace(common *commonFlags, env *Environment) (*workspace, error) {
	ec := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(common.config, ec)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(ec, cfg)
	mergeCommonFlags(common, cfg)

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	root := cfg.Vault
	if root == "" {
		root = "."
	}
	v, err := vault.Open(root)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w%s", err, hints.ForVault())
	}

	settingsPath := resolveSettingsPath(v.Root(), cfg.Settings)
	repo := settings.NewRepository(settings.NewFileStore(settingsPath))
	if _, err := repo.Load(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", settingsPath, err)
	}

	resolver, err := assets.NewAssetResolver(cfg.Assets)
	if err != nil {
		return nil, fmt.Errorf("asset path: %w", err)
	}
	catalog, err := theme.NewCatalogFromLoader(resolver)
	if err != nil {
		return nil, fmt.Errorf("loading themes: %w", err)
	}

	log.Debug("workspace ready",
		zap.String("vault", v.Root()),
		zap.String("settings", settingsPath),
		zap.Int("builtins", len(catalog.Builtins())),
	)

	return &workspace{
		cfg:          cfg,
		vault:        v,
		repo:         repo,
		themes:       theme.NewService(catalog, repo),
		settingsPath: settingsPath,
		log:          log,
	}, nil
}

// loadConfig loads the config named by the flag or MD2WECHAT_CONFIG.
// Without either, md2wechat.yaml is looked up in the standard locations and
// defaults apply when none exists.
func loadConfig(flagConfig string, ec *envConfig) (*config.Config, error) {
	nameOrPath := flagConfig
	if nameOrPath == "" {
		nameOrPath = ec.ConfigPath
	}

	if nameOrPath == "" {
		cfg, err := config.LoadConfig(config.DefaultName)
		if errors.Is(err, config.ErrConfigNotFound) {
			return config.DefaultConfig(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfig(nameOrPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(nameOrPath)))
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeCommonFlags applies explicitly set flags over cfg.
func mergeCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.vault != "" {
		cfg.Vault = f.vault
	}
	if f.settings != "" {
		cfg.Settings = f.settings
	}
	if f.assetPath != "" {
		cfg.Assets = f.assetPath
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	switch {
	case f.verbose:
		cfg.Log.Level = "debug"
	case f.quiet:
		cfg.Log.Level = "error"
	}
}

// resolveSettingsPath returns override, or the settings file inside root.
func resolveSettingsPath(root, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(root, settingsRel)
}

// converterOptions maps config and per-run flags to converter options.
func converterOptions(cfg *config.Config, f renderFlags) []md2wechat.Option {
	return []md2wechat.Option{
		md2wechat.WithEmoji(cfg.Markdown.EmojiEnabled() && !f.noEmoji),
		md2wechat.WithHighlights(cfg.Markdown.Highlights || f.highlights),
		md2wechat.WithHardWraps(cfg.Markdown.HardWraps || f.hardWraps),
		md2wechat.WithKeepClasses(cfg.Markdown.KeepClasses || f.keepClasses),
	}
}
