package theme

import "errors"

// Sentinel errors for theme operations.
var (
	// ErrDuplicateName indicates the name collides, case-insensitively, with an existing theme.
	ErrDuplicateName = errors.New("theme name already exists")

	// ErrEmptyThemeName indicates a blank custom theme name.
	ErrEmptyThemeName = errors.New("theme name is empty")

	// ErrEmptyThemeCSS indicates a blank custom stylesheet.
	ErrEmptyThemeCSS = errors.New("theme CSS is empty")

	// ErrInvalidThemeCSS indicates the stylesheet has no {...} declaration block.
	ErrInvalidThemeCSS = errors.New("theme CSS has no rule block")

	// ErrThemeNotFound indicates no theme has the requested name.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrBuiltinReadOnly indicates an attempt to edit or delete a bundled theme.
	ErrBuiltinReadOnly = errors.New("built-in themes are read-only")
)
