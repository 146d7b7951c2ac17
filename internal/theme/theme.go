package theme

import (
	"regexp"
	"strings"
)

// CustomAliasPrefix prefixes the display alias of every custom theme.
const CustomAliasPrefix = "Custom: "

// Theme is a fully defaulted catalog entry. Values are copies; mutating one
// never affects settings.
type Theme struct {
	Name        string `json:"name"`
	Alias       string `json:"alias"`
	Description string `json:"description"`
	CSS         string `json:"css,omitempty"`
	SourceFile  string `json:"sourceFile"` // empty for custom themes
	BuiltIn     bool   `json:"builtIn"`
}

var (
	metaLine  = regexp.MustCompile(`\*?\s*(\w+):\s*(.+)`)
	ruleBlock = regexp.MustCompile(`[{][^}]*[}]`)
)

// ParseBuiltin builds the Theme for a bundled stylesheet named fileBase.
//
// Metadata comes from a leading /* ... */ comment whose lines read
// "key: value" (an optional leading "*" is allowed). Keys are matched
// case-insensitively; name, alias and description are recognized. Without a
// name field the theme is named after fileBase. A missing alias copies the name.
func ParseBuiltin(css, fileBase string) Theme {
	t := Theme{
		Name:       fileBase,
		Alias:      fileBase,
		CSS:        css,
		SourceFile: fileBase + ".css",
		BuiltIn:    true,
	}

	meta := parseMetadata(css)
	name := meta["name"]
	if name == "" {
		return t
	}
	t.Name = name
	t.Alias = name
	if alias := meta["alias"]; alias != "" {
		t.Alias = alias
	}
	t.Description = meta["description"]
	return t
}

// Custom builds the Theme for a user stylesheet.
func Custom(name, css string) Theme {
	return Theme{
		Name:  name,
		Alias: CustomAliasPrefix + name,
		CSS:   css,
	}
}

// parseMetadata reads key/value pairs from the leading comment.
// Anything malformed yields an empty map.
func parseMetadata(css string) map[string]string {
	body := strings.TrimLeft(css, " \t\r\n\ufeff")
	if !strings.HasPrefix(body, "/*") {
		return nil
	}
	end := strings.Index(body, "*/")
	if end < 0 {
		return nil
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(body[2:end], "\n") {
		m := metaLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		meta[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	return meta
}

// ValidateCustom checks the user input for a custom theme.
func ValidateCustom(name, css string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyThemeName
	}
	if strings.TrimSpace(css) == "" {
		return ErrEmptyThemeCSS
	}
	if !ruleBlock.MatchString(css) {
		return ErrInvalidThemeCSS
	}
	return nil
}
