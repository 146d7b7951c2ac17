package assets

import (
	"errors"
	"slices"
)

// AssetResolver combines custom and embedded loaders.
// A custom stylesheet with a bundled name replaces the bundled content but
// keeps its position; other custom stylesheets follow the bundled ones.
type AssetResolver struct {
	custom   StyleLoader // nil if no custom path configured
	embedded StyleLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle loads a stylesheet, trying the custom loader first if available.
// Only not-found errors fall back to the embedded set.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadStyle(name)
	}

	content, err := r.custom.LoadStyle(name)
	if err == nil {
		return content, nil
	}
	if !isNotFoundError(err) {
		return "", err
	}

	return r.embedded.LoadStyle(name)
}

// StyleNames returns the embedded names followed by custom-only names.
func (r *AssetResolver) StyleNames() []string {
	names := r.embedded.StyleNames()
	if r.custom == nil {
		return names
	}
	for _, name := range r.custom.StyleNames() {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound)
}

// Compile-time interface check.
var _ StyleLoader = (*AssetResolver)(nil)
