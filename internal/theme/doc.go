// Package theme merges the bundled stylesheets and the user's custom
// stylesheets into one ordered catalog.
//
// Catalog functions are pure: they read a settings.Settings value and, for
// SetCustom and RemoveCustom, mutate the map passed in. Service layers the
// user-facing rules on top (validation, case-insensitive uniqueness, default
// reassignment) and persists through settings.Repository.
package theme
