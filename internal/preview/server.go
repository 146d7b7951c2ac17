package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/fileutil"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/settings"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

// VaultPrefix is the URL path under which vault files are served.
const VaultPrefix = "/vault/"

const shutdownTimeout = 5 * time.Second

// Config wires a Server to its collaborators.
type Config struct {
	Converter *md2wechat.Converter
	Vault     *vault.Vault
	Themes    *theme.Service
	Settings  *settings.Repository
	// SettingsPath is watched for edits made outside this server.
	// Empty disables the reload.
	SettingsPath string
	Logger       *zap.Logger
	// Debounce overrides DefaultDebounce for file events.
	Debounce time.Duration
}

// Server renders the active note and pushes it to connected pages.
type Server struct {
	conv         *md2wechat.Converter
	vault        *vault.Vault
	themes       *theme.Service
	repo         *settings.Repository
	settingsPath string
	debounce     time.Duration
	hub          *Hub
	log          *zap.Logger
	resolve      md2wechat.ImageResolver

	// mu serializes render + broadcast and guards active.
	mu     sync.Mutex
	active string
}

// New creates a Server. Theme mutations committed through cfg.Settings are
// broadcast to every page.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	conv := cfg.Converter
	if conv == nil {
		conv = md2wechat.NewConverter()
	}
	s := &Server{
		conv:         conv,
		vault:        cfg.Vault,
		themes:       cfg.Themes,
		repo:         cfg.Settings,
		settingsPath: cfg.SettingsPath,
		debounce:     cfg.Debounce,
		hub:          NewHub(log),
		log:          log,
		resolve:      cfg.Vault.Resolver(vault.URLPrefix(VaultPrefix)),
	}
	if s.repo != nil {
		s.repo.OnChange(func(settings.Settings) { s.themesChanged() })
	}
	return s
}

// Hub returns the server's client registry.
func (s *Server) Hub() *Hub { return s.hub }

// Active returns the vault-relative path of the active note, "" when none.
func (s *Server) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Open makes rel the active note and pushes it with TriggerOpen.
func (s *Server) Open(ctx context.Context, rel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.render(ctx, rel, TriggerOpen)
	if err != nil {
		return err
	}
	s.active = rel
	s.hub.Broadcast(msg)
	return nil
}

// SetActive switches the active note. Selecting the note that is already
// active does nothing and reports false. The active note is unchanged when
// the new one cannot be rendered.
func (s *Server) SetActive(ctx context.Context, rel string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rel == s.active {
		return false, nil
	}
	msg, err := s.render(ctx, rel, TriggerSwitchFile)
	if err != nil {
		return false, err
	}
	s.active = rel
	s.hub.Broadcast(msg)
	return true, nil
}

// NotifyModified re-renders when rel is the active note, keeping the
// page's scroll position. Changes to other notes are ignored.
func (s *Server) NotifyModified(ctx context.Context, rel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rel == "" || rel != s.active {
		return
	}
	s.refreshLocked(ctx, TriggerModify)
}

// Attach sends conn the active note's render and only then registers it for
// broadcasts. Both happen under s.mu, so every later broadcast reaches the
// page after its initial message.
func (s *Server) Attach(ctx context.Context, conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.render(ctx, s.active, TriggerOpen)
	if err != nil {
		msg.Error = err.Error()
	}
	if err := s.hub.Send(conn, msg); err != nil {
		return err
	}
	s.hub.Add(conn)
	return nil
}

// Render converts rel (or the active note when rel is empty) without
// changing any state.
func (s *Server) Render(ctx context.Context, rel string) (RenderMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel == "" {
		rel = s.active
	}
	return s.render(ctx, rel, "")
}

// HandleFileEvent routes a settled file change: the settings file reloads
// themes, a Markdown note may refresh the preview.
func (s *Server) HandleFileEvent(path string) {
	if s.settingsPath != "" && sameFile(path, s.settingsPath) {
		s.reloadSettings()
		return
	}
	if !fileutil.IsMarkdown(path) {
		return
	}
	rel, err := s.vault.Rel(path)
	if err != nil {
		return
	}
	s.log.Debug("note changed", zap.String("path", rel))
	s.NotifyModified(context.Background(), rel)
}

// Watch runs a file watcher over the vault and the settings file until ctx
// is done.
func (s *Server) Watch(ctx context.Context) error {
	w, err := NewWatcher(s.debounce, s.HandleFileEvent, s.log)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.AddTree(s.vault.Root()); err != nil {
		return fmt.Errorf("watching vault: %w", err)
	}
	if s.settingsPath != "" {
		if err := w.AddFile(s.settingsPath); err != nil {
			return fmt.Errorf("watching settings: %w", err)
		}
	}
	s.log.Info("watching vault", zap.String("root", s.vault.Root()))
	return w.Run(ctx)
}

// Serve serves the preview on ln until ctx is done, then shuts down
// gracefully and disconnects every page.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// themesChanged tells pages to reload the picker and redraws with the
// current selection.
func (s *Server) themesChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, selected := s.themes.List()
	s.hub.Broadcast(ThemesMessage{Type: TypeThemes, Default: selected})
	s.refreshLocked(context.Background(), TriggerThemeChange)
}

// reloadSettings picks up edits made by another process.
func (s *Server) reloadSettings() {
	if s.repo == nil {
		return
	}
	before := s.repo.Get()
	after, err := s.repo.Load()
	if err != nil {
		s.log.Warn("cannot reload settings", zap.String("path", s.settingsPath), zap.Error(err))
		return
	}
	if before.Equal(after) {
		return
	}
	s.log.Info("settings changed on disk", zap.String("path", s.settingsPath))
	s.themesChanged()
}

// refreshLocked re-renders the active note and broadcasts it. Render errors
// are sent to the page rather than returned. Callers hold s.mu.
func (s *Server) refreshLocked(ctx context.Context, trigger Trigger) {
	msg, err := s.render(ctx, s.active, trigger)
	if err != nil {
		s.log.Warn("render failed", zap.String("path", s.active), zap.String("trigger", string(trigger)), zap.Error(err))
		msg.Error = err.Error()
	}
	s.hub.Broadcast(msg)
}

// render converts rel with the selected theme. An empty rel renders nothing.
func (s *Server) render(ctx context.Context, rel string, trigger Trigger) (RenderMessage, error) {
	t := s.themes.Selected()
	msg := RenderMessage{
		Type:        TypeRender,
		Trigger:     trigger,
		Path:        rel,
		Theme:       t.Name,
		ResetScroll: trigger.ResetsScroll(),
	}
	if rel == "" {
		return msg, nil
	}

	start := time.Now()
	markdown, err := s.vault.ReadNote(rel)
	if err != nil {
		return msg, err
	}
	res, err := s.conv.Convert(ctx, md2wechat.Input{
		Markdown: markdown,
		ThemeCSS: t.CSS,
		NotePath: rel,
		Resolver: s.resolve,
	})
	if err != nil {
		return msg, err
	}
	msg.HTML = res.HTML

	s.log.Debug("rendered",
		zap.String("path", rel),
		zap.String("theme", t.Name),
		zap.String("trigger", string(trigger)),
		zap.Duration("took", time.Since(start)))
	return msg, nil
}

func sameFile(a, b string) bool {
	ca, err1 := filepath.Abs(a)
	cb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return false
	}
	if ra, err := filepath.EvalSymlinks(ca); err == nil {
		ca = ra
	}
	if rb, err := filepath.EvalSymlinks(cb); err == nil {
		cb = rb
	}
	return ca == cb
}
