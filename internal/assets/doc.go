// Package assets provides the built-in theme stylesheets.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in themes)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader serves the bundled themes in the fixed order given by
// BuiltinStyleNames. The theme catalog relies on that order: the first name
// is the fallback whenever a selected custom theme disappears.
//
// FilesystemLoader lets users override a bundled stylesheet by dropping a
// file with the same name into {basePath}/styles/. Files that do not shadow
// a bundled theme are appended after the bundled ones.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
