package assets

import (
	"embed"
	"fmt"
	"slices"
)

//go:embed styles/*.css
var styles embed.FS

// BuiltinStyleNames is the declaration order of the bundled themes.
// The first entry doubles as the default theme.
var BuiltinStyleNames = []string{"default", "github", "grace", "ink"}

// EmbeddedLoader loads the bundled stylesheets.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a bundled stylesheet by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// StyleNames returns a copy of BuiltinStyleNames.
func (e *EmbeddedLoader) StyleNames() []string {
	return slices.Clone(BuiltinStyleNames)
}

// Compile-time interface check.
var _ StyleLoader = (*EmbeddedLoader)(nil)
