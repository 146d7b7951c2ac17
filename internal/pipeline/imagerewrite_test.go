package pipeline

// Notes:
// - The resolver is a map lookup; vault-backed resolution is covered in
//   internal/vault.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestResolveImages
// ---------------------------------------------------------------------------

func TestResolveImages(t *testing.T) {
	t.Parallel()

	resolver := mapResolver(map[string]string{
		"notes/img/a.png":  "/vault/notes/img/a.png",
		"assets/b.png":     "/vault/assets/b.png",
		"notes/my pic.png": "/vault/notes/my%20pic.png",
		"root.png":         "/vault/root.png",
	})

	tests := []struct {
		name    string
		html    string
		noteDir string
		want    string
	}{
		{
			name:    "relative to note folder",
			html:    `<img src="img/a.png"/>`,
			noteDir: "notes",
			want:    `src="/vault/notes/img/a.png"`,
		},
		{
			name:    "dot slash prefix",
			html:    `<img src="./img/a.png"/>`,
			noteDir: "notes",
			want:    `src="/vault/notes/img/a.png"`,
		},
		{
			name:    "falls back to vault root",
			html:    `<img src="assets/b.png"/>`,
			noteDir: "notes",
			want:    `src="/vault/assets/b.png"`,
		},
		{
			name:    "note at vault root",
			html:    `<img src="root.png"/>`,
			noteDir: "",
			want:    `src="/vault/root.png"`,
		},
		{
			name:    "percent-encoded src",
			html:    `<img src="my%20pic.png"/>`,
			noteDir: "notes",
			want:    `src="/vault/notes/my%20pic.png"`,
		},
		{
			name:    "unresolvable left unchanged",
			html:    `<img src="missing.png"/>`,
			noteDir: "notes",
			want:    `<img src="missing.png"/>`,
		},
		{
			name:    "parent traversal out of vault not resolved",
			html:    `<img src="../../x.png"/>`,
			noteDir: "notes",
			want:    `<img src="../../x.png"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveImages(tt.html, tt.noteDir, resolver)
			if err != nil {
				t.Fatalf("ResolveImages() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q\ngot: %s", tt.want, got)
			}
		})
	}
}

func TestResolveImages_SkippedSources(t *testing.T) {
	t.Parallel()

	asked := 0
	resolver := func(string) (string, bool) {
		asked++
		return "/resolved", true
	}

	for _, src := range []string{
		"/abs/logo.png",
		"file:///already/absolute.png",
		"http://example.com/a.png",
		"https://example.com/a.png",
		"data:image/png;base64,AAAA",
	} {
		in := `<p><img src="` + src + `"/></p>`
		got, err := ResolveImages(in, "notes", resolver)
		if err != nil {
			t.Fatalf("ResolveImages(%q) error = %v", src, err)
		}
		if got != in {
			t.Errorf("ResolveImages(%q) = %q, want input unchanged", src, got)
		}
	}
	if asked != 0 {
		t.Errorf("resolver called %d times, want 0", asked)
	}
}

func TestResolveImages_NoChangeKeepsMarkup(t *testing.T) {
	t.Parallel()

	in := `<section id="md2wechat"><p style="color:red">"q" <img src="nope.png"></p></section>`
	got, err := ResolveImages(in, "", mapResolver(nil))
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Errorf("markup re-rendered without changes: %q", got)
	}
}

func TestResolveImages_NilResolver(t *testing.T) {
	t.Parallel()

	in := `<img src="a.png">`
	got, err := ResolveImages(in, "", nil)
	if err != nil || got != in {
		t.Errorf("ResolveImages() = %q, %v", got, err)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mapResolver(m map[string]string) ImageResolver {
	return func(p string) (string, bool) {
		v, ok := m[p]
		return v, ok
	}
}
