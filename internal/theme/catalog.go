package theme

import (
	"slices"
	"sort"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/assets"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/settings"
)

// Catalog lists bundled themes followed by custom ones.
// The bundled part is parsed once and never changes.
type Catalog struct {
	builtins []Theme
}

// NewCatalog parses styles in the order given.
func NewCatalog(styles []assets.Style) *Catalog {
	c := &Catalog{builtins: make([]Theme, 0, len(styles))}
	for _, s := range styles {
		c.builtins = append(c.builtins, ParseBuiltin(s.CSS, s.Name))
	}
	return c
}

// NewCatalogFromLoader loads every style the loader advertises.
func NewCatalogFromLoader(l assets.StyleLoader) (*Catalog, error) {
	styles, err := assets.LoadAll(l)
	if err != nil {
		return nil, err
	}
	return NewCatalog(styles), nil
}

// DefaultCatalog uses the embedded stylesheets only.
func DefaultCatalog() *Catalog {
	return NewCatalog(assets.BuiltinStyles())
}

// Builtins returns the bundled themes in declaration order.
func (c *Catalog) Builtins() []Theme {
	return slices.Clone(c.builtins)
}

// FirstBuiltinName is the fallback theme name, or "" for an empty catalog.
func (c *Catalog) FirstBuiltinName() string {
	if len(c.builtins) == 0 {
		return ""
	}
	return c.builtins[0].Name
}

// List returns bundled themes then custom themes sorted by name.
func (c *Catalog) List(s settings.Settings) []Theme {
	out := slices.Clone(c.builtins)
	names := make([]string, 0, len(s.CustomThemes))
	for name := range s.CustomThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, Custom(name, s.CustomThemes[name]))
	}
	return out
}

// IsNameUnique reports whether candidate differs, case-insensitively, from
// every theme in the merged list. An optional excluding name (the theme being
// renamed) is ignored during the comparison.
func (c *Catalog) IsNameUnique(candidate string, s settings.Settings, excluding ...string) bool {
	skip := ""
	if len(excluding) > 0 {
		skip = strings.ToLower(excluding[0])
	}
	want := strings.ToLower(candidate)
	for _, t := range c.List(s) {
		name := strings.ToLower(t.Name)
		if name == want && name != skip {
			return false
		}
	}
	return true
}

// Find looks up a theme by name. Bundled themes match case-insensitively and
// take precedence over any colliding custom name. Among custom themes an exact
// match beats a case-insensitive one.
func (c *Catalog) Find(s settings.Settings, name string) (Theme, bool) {
	for _, t := range c.builtins {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	if css, ok := s.CustomThemes[name]; ok {
		return Custom(name, css), true
	}
	customs := c.List(s)[len(c.builtins):]
	for _, t := range customs {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Theme{}, false
}

// IsBuiltin reports whether name (case-insensitive) is a bundled theme.
func (c *Catalog) IsBuiltin(name string) bool {
	for _, t := range c.builtins {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// SetCustom stores css under name. It performs no validation or uniqueness
// check and no I/O.
func SetCustom(s *settings.Settings, name, css string) {
	if s.CustomThemes == nil {
		s.CustomThemes = map[string]string{}
	}
	s.CustomThemes[name] = css
}

// RemoveCustom deletes name from the custom themes. Missing names are ignored.
func RemoveCustom(s *settings.Settings, name string) {
	delete(s.CustomThemes, name)
}
