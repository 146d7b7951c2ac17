package preview

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
)

func (s *Server) registerThemeRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/themes", s.handleListThemes)
	mux.HandleFunc("PUT /api/themes/default", s.handleSelectTheme)
	mux.HandleFunc("POST /api/themes", s.handleCreateTheme)
	mux.HandleFunc("GET /api/themes/{name}/css", s.handleThemeCSS)
	mux.HandleFunc("PUT /api/themes/{name}", s.handleUpdateTheme)
	mux.HandleFunc("DELETE /api/themes/{name}", s.handleDeleteTheme)
}

// themeList is the body of GET /api/themes.
type themeList struct {
	Default string        `json:"default"`
	Themes  []theme.Theme `json:"themes"`
}

// themeRequest is the body of POST and PUT theme requests.
type themeRequest struct {
	Name string `json:"name"`
	CSS  string `json:"css"`
}

// handleListThemes returns every theme without stylesheets.
func (s *Server) handleListThemes(w http.ResponseWriter, _ *http.Request) {
	themes, selected := s.themes.List()
	for i := range themes {
		themes[i].CSS = ""
	}
	writeJSON(w, http.StatusOK, themeList{Default: selected, Themes: themes})
}

// handleSelectTheme changes the default theme. The settings listener
// broadcasts the change and redraws open pages.
func (s *Server) handleSelectTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.themes.SelectDefault(req.Name); err != nil {
		s.themeError(w, "select", req.Name, err)
		return
	}
	_, selected := s.themes.List()
	writeJSON(w, http.StatusOK, map[string]string{"default": selected})
}

func (s *Server) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.themes.Add(req.Name, req.CSS)
	if err != nil {
		s.themeError(w, "create", req.Name, err)
		return
	}
	s.log.Info("custom theme created", zap.String("name", t.Name))
	writeJSON(w, http.StatusCreated, t)
}

// handleUpdateTheme replaces a custom theme's stylesheet and optionally
// renames it. An empty name in the body keeps the current one.
func (s *Server) handleUpdateTheme(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req themeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		req.Name = name
	}
	t, err := s.themes.Update(name, req.Name, req.CSS)
	if err != nil {
		s.themeError(w, "update", name, err)
		return
	}
	s.log.Info("custom theme updated", zap.String("name", name), zap.String("newName", t.Name))
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTheme(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.themes.Delete(name); err != nil {
		s.themeError(w, "delete", name, err)
		return
	}
	s.log.Info("custom theme deleted", zap.String("name", name))
	w.WriteHeader(http.StatusNoContent)
}

// handleThemeCSS returns a stylesheet, built-in or custom, as text/css.
func (s *Server) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	t, err := s.themes.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(t.CSS))
}

// themeError writes the rejection and logs failures that are not user input
// errors.
func (s *Server) themeError(w http.ResponseWriter, op, name string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("theme operation failed", zap.String("op", op), zap.String("name", name), zap.Error(err))
	}
	writeError(w, status, err.Error())
}
