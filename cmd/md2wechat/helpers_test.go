package main

// Notes:
// - Test infrastructure shared by the command tests, not code under test.
// - Every run passes --config with an empty file so a developer's own
//   md2wechat.yaml never leaks into results.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// syncBuffer - Writer safe for concurrent use
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ---------------------------------------------------------------------------
// testEnv - Captured environment
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout *syncBuffer
	stderr *syncBuffer
	opened chan string
}

// newTestEnv returns an environment with captured output and the given
// variables as the only environment.
func newTestEnv(vars map[string]string) *testEnv {
	te := &testEnv{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		opened: make(chan string, 1),
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Stdin:  strings.NewReader(""),
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		OpenURL: func(_ context.Context, url string) error {
			select {
			case te.opened <- url:
			default:
			}
			return nil
		},
	}
	return te
}

// ---------------------------------------------------------------------------
// Vault fixtures
// ---------------------------------------------------------------------------

// setupVault creates a vault with the given files and an empty config file
// next to it. It returns the vault root and the config path.
func setupVault(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "vault")
	if err := os.MkdirAll(root, 0o750); err != nil {
		t.Fatalf("creating vault: %v", err)
	}
	writeFiles(t, root, files)

	cfg := filepath.Join(base, "md2wechat.yaml")
	if err := os.WriteFile(cfg, nil, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return root, cfg
}

// writeFiles writes path -> content pairs under root.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("creating dir for %s: %v", p, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// run invokes runMain with "md2wechat" prepended and returns the exit code.
func run(te *testEnv, args ...string) int {
	return runMain(append([]string{"md2wechat"}, args...), te.Environment)
}

// assertContains fails when s lacks any of wants.
func assertContains(t *testing.T, label, s string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(s, want) {
			t.Errorf("%s should contain %q, got:\n%s", label, want, s)
		}
	}
}
