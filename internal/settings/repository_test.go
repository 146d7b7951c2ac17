package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryStore(nil))

	s, err := repo.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultThemeName, s.DefaultTheme)
	assert.NotNil(t, s.CustomThemes)
	assert.Empty(t, s.CustomThemes)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	tests := []struct {
		name        string
		blob        string
		wantDefault string
		wantCustom  map[string]string
	}{
		{
			name:        "full blob",
			blob:        `{"defaultTheme":"github","customThemes":{"mine":"p{color:red}"}}`,
			wantDefault: "github",
			wantCustom:  map[string]string{"mine": "p{color:red}"},
		},
		{
			name:        "missing defaultTheme",
			blob:        `{"customThemes":{"a":"b{}"}}`,
			wantDefault: DefaultThemeName,
			wantCustom:  map[string]string{"a": "b{}"},
		},
		{
			name:        "null customThemes",
			blob:        `{"defaultTheme":"ink","customThemes":null}`,
			wantDefault: "ink",
			wantCustom:  map[string]string{},
		},
		{
			name:        "unknown keys ignored",
			blob:        `{"defaultTheme":"grace","legacy":true}`,
			wantDefault: "grace",
			wantCustom:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository(NewMemoryStore([]byte(tt.blob)))
			s, err := repo.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, s.DefaultTheme)
			assert.Equal(t, tt.wantCustom, s.CustomThemes)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	repo := NewRepository(NewMemoryStore([]byte("{not json")))
	_, err := repo.Load()
	assert.ErrorIs(t, err, ErrDecode)
}

func TestMutatePersistsFullSettings(t *testing.T) {
	store := NewMemoryStore(nil)
	repo := NewRepository(store)
	_, err := repo.Load()
	require.NoError(t, err)

	var notified []Settings
	repo.OnChange(func(s Settings) { notified = append(notified, s) })

	_, err = repo.Mutate(func(s *Settings) error {
		s.CustomThemes["mine"] = "p{color:red}"
		s.DefaultTheme = "mine"
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Writes())
	require.Len(t, notified, 1)
	assert.Equal(t, "mine", notified[0].DefaultTheme)

	data, _ := store.Read()
	var persisted Settings
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "mine", persisted.DefaultTheme)
	assert.Equal(t, map[string]string{"mine": "p{color:red}"}, persisted.CustomThemes)
}

func TestMutateErrorLeavesStateUntouched(t *testing.T) {
	store := NewMemoryStore(nil)
	repo := NewRepository(store)
	_, err := repo.Load()
	require.NoError(t, err)

	sentinel := errors.New("rejected")
	_, err = repo.Mutate(func(s *Settings) error {
		s.CustomThemes["half"] = "p{}"
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, store.Writes())
	assert.Empty(t, repo.Get().CustomThemes)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewRepository(NewMemoryStore(nil))
	s := repo.Get()
	s.CustomThemes["leak"] = "x"

	assert.Empty(t, repo.Get().CustomThemes)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".md2wechat", "settings.json")
	store := NewFileStore(path)

	data, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, data)

	repo := NewRepository(store)
	_, err = repo.Mutate(func(s *Settings) error {
		s.CustomThemes["x"] = "h1{color:red}"
		return nil
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	reloaded, err := NewRepository(NewFileStore(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, "h1{color:red}", reloaded.CustomThemes["x"])
	assert.Equal(t, DefaultThemeName, reloaded.DefaultTheme)
}

func TestSettingsEqual(t *testing.T) {
	a := Settings{DefaultTheme: "ink", CustomThemes: map[string]string{"x": "p{}"}}

	assert.True(t, a.Equal(a.Clone()))
	assert.True(t, Settings{DefaultTheme: "d"}.Equal(Settings{DefaultTheme: "d", CustomThemes: map[string]string{}}))
	assert.False(t, a.Equal(Settings{DefaultTheme: "ink"}))
	assert.False(t, a.Equal(Settings{DefaultTheme: "github", CustomThemes: map[string]string{"x": "p{}"}}))
}

func TestOnChangeRunsAfterSave(t *testing.T) {
	store := NewMemoryStore(nil)
	repo := NewRepository(store)

	var seen []string
	repo.OnChange(func(s Settings) {
		assert.Equal(t, 1, store.Writes(), "listener must run after the write")
		seen = append(seen, s.DefaultTheme)
	})

	_, err := repo.Mutate(func(s *Settings) error {
		s.DefaultTheme = "ink"
		return nil
	})
	require.NoError(t, err)

	_, err = repo.Mutate(func(*Settings) error { return errors.New("rejected") })
	require.Error(t, err)

	assert.Equal(t, []string{"ink"}, seen)
}
