// Package settings owns the persisted plugin settings: the selected theme and
// the user's custom stylesheets. Every mutation goes through Repository.Mutate,
// which persists the full settings object before returning.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// DefaultThemeName is the theme selected on first load.
const DefaultThemeName = "default"

// ErrDecode indicates the persisted blob is not valid settings JSON.
var ErrDecode = errors.New("settings: cannot decode")

// Settings is the persisted state.
// The JSON layout matches the blob written by the editor plugin so an existing
// data.json can be reused as-is.
type Settings struct {
	DefaultTheme string            `json:"defaultTheme"`
	CustomThemes map[string]string `json:"customThemes"`
}

// Defaults returns the settings used when nothing is persisted.
func Defaults() Settings {
	return Settings{
		DefaultTheme: DefaultThemeName,
		CustomThemes: map[string]string{},
	}
}

// Clone returns a deep copy so callers never share the custom-theme map.
func (s Settings) Clone() Settings {
	out := s
	out.CustomThemes = maps.Clone(s.CustomThemes)
	if out.CustomThemes == nil {
		out.CustomThemes = map[string]string{}
	}
	return out
}

// Equal reports whether s and o hold the same values. A nil and an empty
// custom-theme map are equal.
func (s Settings) Equal(o Settings) bool {
	return s.DefaultTheme == o.DefaultTheme && maps.Equal(s.CustomThemes, o.CustomThemes)
}

// decode merges a persisted blob over Defaults.
// Absent or empty fields keep their default value.
func decode(data []byte) (Settings, error) {
	s := Defaults()
	if len(data) == 0 {
		return s, nil
	}

	var raw struct {
		DefaultTheme *string           `json:"defaultTheme"`
		CustomThemes map[string]string `json:"customThemes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if raw.DefaultTheme != nil && *raw.DefaultTheme != "" {
		s.DefaultTheme = *raw.DefaultTheme
	}
	maps.Copy(s.CustomThemes, raw.CustomThemes)
	return s, nil
}

func encode(s Settings) ([]byte, error) {
	s = s.Clone()
	return json.MarshalIndent(s, "", "  ")
}
