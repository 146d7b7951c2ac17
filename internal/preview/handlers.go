package preview

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	md2wechat "github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

// maxBodySize caps request bodies; custom stylesheets are the largest payload.
const maxBodySize = 1 << 20

//go:embed page.html
var pageHTML []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// Handler returns the HTTP routes of the preview.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("GET /api/active", s.handleGetActive)
	mux.HandleFunc("POST /api/active", s.handleSetActive)
	mux.HandleFunc("GET "+VaultPrefix+"{path...}", s.handleVaultFile)

	s.registerThemeRoutes(mux)

	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(pageHTML)
}

// handleWebSocket registers a page and sends it the current render.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	if err := s.Attach(r.Context(), conn); err != nil {
		s.log.Debug("initial render not delivered", zap.String("remote", r.RemoteAddr), zap.Error(err))
		_ = conn.Close()
		return
	}
	s.log.Debug("preview client connected", zap.String("remote", r.RemoteAddr), zap.Int("clients", s.hub.Len()))

	// Pages never send data; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Remove(conn)
			s.log.Debug("preview client disconnected", zap.String("remote", r.RemoteAddr))
			return
		}
	}
}

// renderResponse is the body of GET /api/render.
type renderResponse struct {
	Path  string `json:"path"`
	Theme string `json:"theme"`
	HTML  string `json:"html"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	msg, err := s.Render(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{Path: msg.Path, Theme: msg.Theme, HTML: msg.HTML})
}

func (s *Server) handleListNotes(w http.ResponseWriter, _ *http.Request) {
	notes, err := s.vault.Notes()
	if err != nil {
		s.log.Error("failed to list notes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes, "active": s.Active()})
}

type activeRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleGetActive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, activeRequest{Path: s.Active()})
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	changed, err := s.SetActive(r.Context(), req.Path)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": req.Path, "changed": changed})
}

// handleVaultFile serves attachments referenced by rendered notes.
// Hidden directories (settings, editor metadata) are not exposed.
func (s *Server) handleVaultFile(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	for _, seg := range strings.Split(rel, "/") {
		if isHidden(seg) {
			http.NotFound(w, r)
			return
		}
	}
	abs, err := s.vault.Abs(rel)
	if err != nil || !s.vault.Exists(rel) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, theme.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, theme.ErrEmptyThemeName),
		errors.Is(err, theme.ErrEmptyThemeCSS),
		errors.Is(err, theme.ErrInvalidThemeCSS),
		errors.Is(err, vault.ErrOutsideVault),
		errors.Is(err, vault.ErrNotMarkdown):
		return http.StatusBadRequest
	case errors.Is(err, theme.ErrBuiltinReadOnly):
		return http.StatusForbidden
	case errors.Is(err, theme.ErrThemeNotFound),
		errors.Is(err, vault.ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, md2wechat.ErrCSSInline),
		errors.Is(err, md2wechat.ErrHTMLConversion):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an RFC 7807 problem response.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
