package theme

import (
	"fmt"
	"strings"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/settings"
)

// Service applies the user-facing theme rules and persists every change
// through the settings repository.
type Service struct {
	catalog *Catalog
	repo    *settings.Repository
}

// NewService creates a Service over catalog and repo.
func NewService(catalog *Catalog, repo *settings.Repository) *Service {
	return &Service{catalog: catalog, repo: repo}
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// List returns the merged theme list and the selected default name.
func (s *Service) List() ([]Theme, string) {
	st := s.repo.Get()
	return s.catalog.List(st), st.DefaultTheme
}

// Get returns the named theme.
func (s *Service) Get(name string) (Theme, error) {
	t, ok := s.catalog.Find(s.repo.Get(), name)
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return t, nil
}

// Selected resolves the default theme. A selection that no longer exists
// resolves to the first bundled theme.
func (s *Service) Selected() Theme {
	st := s.repo.Get()
	if t, ok := s.catalog.Find(st, st.DefaultTheme); ok {
		return t
	}
	t, _ := s.catalog.Find(st, s.catalog.FirstBuiltinName())
	return t
}

// Resolve returns the named theme, or Selected when name is empty.
func (s *Service) Resolve(name string) (Theme, error) {
	if name == "" {
		return s.Selected(), nil
	}
	return s.Get(name)
}

// Add creates a custom theme. Names are trimmed before use.
func (s *Service) Add(name, css string) (Theme, error) {
	name = strings.TrimSpace(name)
	if err := ValidateCustom(name, css); err != nil {
		return Theme{}, err
	}
	_, err := s.repo.Mutate(func(st *settings.Settings) error {
		if !s.catalog.IsNameUnique(name, *st) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		SetCustom(st, name, css)
		return nil
	})
	if err != nil {
		return Theme{}, err
	}
	return Custom(name, css), nil
}

// Update replaces the custom theme oldName with newName and css.
// Renaming a theme that is the current default carries the selection over.
func (s *Service) Update(oldName, newName, css string) (Theme, error) {
	newName = strings.TrimSpace(newName)
	if err := ValidateCustom(newName, css); err != nil {
		return Theme{}, err
	}
	_, err := s.repo.Mutate(func(st *settings.Settings) error {
		if _, ok := st.CustomThemes[oldName]; !ok {
			if s.catalog.IsBuiltin(oldName) {
				return fmt.Errorf("%w: %q", ErrBuiltinReadOnly, oldName)
			}
			return fmt.Errorf("%w: %q", ErrThemeNotFound, oldName)
		}
		if !s.catalog.IsNameUnique(newName, *st, oldName) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
		}
		if newName != oldName {
			RemoveCustom(st, oldName)
			if st.DefaultTheme == oldName {
				st.DefaultTheme = newName
			}
		}
		SetCustom(st, newName, css)
		return nil
	})
	if err != nil {
		return Theme{}, err
	}
	return Custom(newName, css), nil
}

// Delete removes a custom theme. Deleting the selected default falls back to
// the first bundled theme.
func (s *Service) Delete(name string) error {
	_, err := s.repo.Mutate(func(st *settings.Settings) error {
		if _, ok := st.CustomThemes[name]; !ok {
			if s.catalog.IsBuiltin(name) {
				return fmt.Errorf("%w: %q", ErrBuiltinReadOnly, name)
			}
			return fmt.Errorf("%w: %q", ErrThemeNotFound, name)
		}
		RemoveCustom(st, name)
		if st.DefaultTheme == name {
			st.DefaultTheme = s.catalog.FirstBuiltinName()
		}
		return nil
	})
	return err
}

// SelectDefault records name as the default theme.
func (s *Service) SelectDefault(name string) error {
	_, err := s.repo.Mutate(func(st *settings.Settings) error {
		t, ok := s.catalog.Find(*st, name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrThemeNotFound, name)
		}
		st.DefaultTheme = t.Name
		return nil
	})
	return err
}
