package yamlutil_test

// Notes:
// - TestInputSizeLimit mutates MaxInputSize and therefore does not run in parallel.

import (
	"errors"
	"strings"
	"testing"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/yamlutil"
)

type testConfig struct {
	Theme string `yaml:"theme"`
	Port  int    `yaml:"port"`
	Emoji bool   `yaml:"emoji"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("theme: github\nport: 8080\nemoji: true"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Theme != "github" {
					t.Errorf("Theme = %q, want %q", cfg.Theme, "github")
				}
				if cfg.Port != 8080 {
					t.Errorf("Port = %d, want %d", cfg.Port, 8080)
				}
				if !cfg.Emoji {
					t.Error("Emoji = false, want true")
				}
			},
		},
		{
			name: "unknown fields ignored",
			data: []byte("theme: ink\nunknown: 1"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				if got := v.(*testConfig).Theme; got != "ink" {
					t.Errorf("Theme = %q, want %q", got, "ink")
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("theme: x"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid YAML syntax",
			data:    []byte("theme: [unclosed"),
			dest:    &testConfig{},
			wantErr: errors.New("yamlutil:"),
		},
		{
			name: "unicode content",
			data: []byte("theme: 墨韵"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				if got := v.(*testConfig).Theme; got != "墨韵" {
					t.Errorf("Theme = %q, want %q", got, "墨韵")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			assertErr(t, err, tt.wantErr)
			if tt.wantErr == nil && tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "known fields only", data: []byte("theme: default\nport: 1")},
		{name: "unknown field", data: []byte("theme: x\nthem: y"), wantErr: errors.New("yamlutil:")},
		{name: "empty data", data: []byte{}, wantErr: yamlutil.ErrNilData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var cfg testConfig
			assertErr(t, yamlutil.UnmarshalStrict(tt.data, &cfg), tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestDecodeMapping - Generic front matter decoding
// ---------------------------------------------------------------------------

func TestDecodeMapping(t *testing.T) {
	t.Parallel()

	t.Run("mapping", func(t *testing.T) {
		t.Parallel()

		m, err := yamlutil.DecodeMapping([]byte("title: Hello\ntags: [a, b]"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m["title"] != "Hello" {
			t.Errorf("title = %v, want Hello", m["title"])
		}
		if _, ok := m["tags"]; !ok {
			t.Error("tags missing")
		}
	})

	t.Run("scalar document", func(t *testing.T) {
		t.Parallel()

		_, err := yamlutil.DecodeMapping([]byte("just text"))
		if !errors.Is(err, yamlutil.ErrNotMapping) {
			t.Errorf("err = %v, want ErrNotMapping", err)
		}
	})

	t.Run("null document", func(t *testing.T) {
		t.Parallel()

		m, err := yamlutil.DecodeMapping([]byte("~"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(m) != 0 {
			t.Errorf("len = %d, want 0", len(m))
		}
	})
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	yamlutil.MaxInputSize = 50
	data := make([]byte, 100)
	copy(data, "theme: x")

	var cfg testConfig
	err := yamlutil.Unmarshal(data, &cfg)
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
	}
	if !strings.Contains(err.Error(), "100 bytes") || !strings.Contains(err.Error(), "max 50") {
		t.Errorf("error should contain sizes, got: %s", err)
	}
	if _, err := yamlutil.DecodeMapping(data); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("DecodeMapping should enforce limit, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func assertErr(t *testing.T, err, want error) {
	t.Helper()
	if want == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if errors.Is(err, want) {
		return
	}
	if !strings.Contains(err.Error(), want.Error()) {
		t.Fatalf("error = %q, want containing %q", err, want)
	}
}
