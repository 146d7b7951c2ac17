package settings

import (
	"fmt"
	"sync"
)

// Repository is the single persistence point for Settings.
// It is safe for concurrent use.
type Repository struct {
	mu        sync.Mutex
	store     Store
	current   Settings
	listeners []func(Settings)
}

// NewRepository creates a Repository holding Defaults until Load is called.
func NewRepository(store Store) *Repository {
	return &Repository{store: store, current: Defaults()}
}

// Load reads the store and merges the persisted values over Defaults.
func (r *Repository) Load() (Settings, error) {
	data, err := r.store.Read()
	if err != nil {
		return Settings{}, fmt.Errorf("settings: reading store: %w", err)
	}
	s, err := decode(data)
	if err != nil {
		return Settings{}, err
	}

	r.mu.Lock()
	r.current = s
	r.mu.Unlock()
	return s.Clone(), nil
}

// Get returns a copy of the current settings.
func (r *Repository) Get() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}

// Mutate applies fn to a copy of the current settings and persists the result.
// If fn returns an error, nothing changes and nothing is written.
// Listeners registered with OnChange run after a successful save.
func (r *Repository) Mutate(fn func(*Settings) error) (Settings, error) {
	r.mu.Lock()
	next := r.current.Clone()
	if err := fn(&next); err != nil {
		r.mu.Unlock()
		return Settings{}, err
	}
	if err := r.saveLocked(next); err != nil {
		r.mu.Unlock()
		return Settings{}, err
	}
	r.current = next
	listeners := append([]func(Settings){}, r.listeners...)
	r.mu.Unlock()

	for _, l := range listeners {
		l(next.Clone())
	}
	return next.Clone(), nil
}

// Save writes the current settings in full.
func (r *Repository) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(r.current)
}

// OnChange registers fn to be called after every successful Mutate.
func (r *Repository) OnChange(fn func(Settings)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Repository) saveLocked(s Settings) error {
	data, err := encode(s)
	if err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}
	if err := r.store.Write(data); err != nil {
		return fmt.Errorf("settings: writing store: %w", err)
	}
	return nil
}
