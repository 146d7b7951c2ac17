package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEndpoint(t *testing.T) {
	f := newFixture(t, map[string]string{
		"notes/hello.md": "---\ntitle: x\n---\n# Hi",
		"notes/pic.png":  "png",
	})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, body renderResponse)
	}{
		{
			name:       "note renders with default theme",
			query:      "?path=notes/hello.md",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body renderResponse) {
				assert.Equal(t, "notes/hello.md", body.Path)
				assert.Equal(t, "default", body.Theme)
				assert.Contains(t, body.HTML, "Hi</h1>")
				assert.NotContains(t, body.HTML, "title: x")
			},
		},
		{
			name:       "no active note renders nothing",
			query:      "",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body renderResponse) {
				assert.Empty(t, body.HTML)
			},
		},
		{name: "missing note", query: "?path=notes/none.md", wantStatus: http.StatusNotFound},
		{name: "not markdown", query: "?path=notes/pic.png", wantStatus: http.StatusBadRequest},
		{name: "outside vault", query: "?path=../x.md", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, "/api/render"+tt.query, nil)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.check != nil {
				tt.check(t, decode[renderResponse](t, resp))
			}
		})
	}
}

func TestImagesResolveToVaultURLs(t *testing.T) {
	f := newFixture(t, map[string]string{
		"notes/post.md": "![p](pic.png) ![r](https://example.com/r.png)",
		"notes/pic.png": "png",
	})

	resp := f.do(t, http.MethodGet, "/api/render?path=notes/post.md", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[renderResponse](t, resp)

	assert.Contains(t, body.HTML, `src="/vault/notes/pic.png"`)
	assert.Contains(t, body.HTML, `src="https://example.com/r.png"`)

	img := f.do(t, http.MethodGet, "/vault/notes/pic.png", nil)
	assert.Equal(t, http.StatusOK, img.StatusCode)
}

func TestVaultFilesHideDotDirectories(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "# a"})
	require.NoError(t, f.repo.Save())

	resp := f.do(t, http.MethodGet, "/vault/.md2wechat/settings.json", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/vault/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPushTriggers(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.md": "# A",
		"b.md": "# B",
	})
	ctx := context.Background()

	require.NoError(t, f.srv.Open(ctx, "a.md"))
	conn, first := f.dial(t)
	assert.Equal(t, TriggerOpen, first.Trigger)
	assert.True(t, first.ResetScroll)
	assert.Equal(t, "a.md", first.Path)
	assert.Contains(t, first.HTML, "A</h1>")

	t.Run("switch file resets scroll", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/active", map[string]string{"path": "b.md"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var msg RenderMessage
		readJSON(t, conn, &msg)
		assert.Equal(t, TypeRender, msg.Type)
		assert.Equal(t, TriggerSwitchFile, msg.Trigger)
		assert.True(t, msg.ResetScroll)
		assert.Equal(t, "b.md", msg.Path)
		assert.Contains(t, msg.HTML, "B</h1>")
	})

	t.Run("same file is not re-rendered", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/active", map[string]string{"path": "b.md"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, false, body["changed"])
		f.expectNothingPending(t, conn)
	})

	t.Run("modify preserves scroll", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(f.root, "b.md"), []byte("# B2"), 0o600))
		f.srv.NotifyModified(ctx, "b.md")

		var msg RenderMessage
		readJSON(t, conn, &msg)
		assert.Equal(t, TriggerModify, msg.Trigger)
		assert.False(t, msg.ResetScroll)
		assert.Contains(t, msg.HTML, "B2</h1>")
	})

	t.Run("modify of inactive note is ignored", func(t *testing.T) {
		f.srv.NotifyModified(ctx, "a.md")
		f.expectNothingPending(t, conn)
	})

	t.Run("theme change resets scroll", func(t *testing.T) {
		resp := f.do(t, http.MethodPut, "/api/themes/default", map[string]string{"name": "github"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		typ, raw := readType(t, conn)
		require.Equal(t, TypeThemes, typ)
		var themes ThemesMessage
		require.NoError(t, json.Unmarshal(raw, &themes))
		assert.Equal(t, "github", themes.Default)

		var msg RenderMessage
		readJSON(t, conn, &msg)
		assert.Equal(t, TriggerThemeChange, msg.Trigger)
		assert.True(t, msg.ResetScroll)
		assert.Equal(t, "github", msg.Theme)
	})

	t.Run("unknown note keeps active", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/active", map[string]string{"path": "zzz.md"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "b.md", f.srv.Active())
	})
}

func TestPageRegisteredAfterInitialRender(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "# A"})
	ctx := context.Background()
	require.NoError(t, f.srv.Open(ctx, "a.md"))

	type dialed struct {
		conn  *websocket.Conn
		first RenderMessage
		err   error
	}
	done := make(chan dialed, 1)
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"

	// Hold the render lock so the page connects but cannot be attached yet.
	f.srv.mu.Lock()
	go func() {
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			done <- dialed{err: err}
			return
		}
		_ = resp.Body.Close()
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var first RenderMessage
		err = conn.ReadJSON(&first)
		done <- dialed{conn: conn, first: first, err: err}
	}()
	assert.Never(t, func() bool { return f.srv.Hub().Len() > 0 }, 200*time.Millisecond, 20*time.Millisecond,
		"page joined broadcasts before its initial render")
	f.srv.mu.Unlock()

	got := <-done
	require.NoError(t, got.err)
	t.Cleanup(func() { _ = got.conn.Close() })
	assert.Equal(t, TriggerOpen, got.first.Trigger)
	assert.True(t, got.first.ResetScroll)
	assert.Contains(t, got.first.HTML, "A</h1>")
	assert.Equal(t, 1, f.srv.Hub().Len())

	require.NoError(t, os.WriteFile(filepath.Join(f.root, "a.md"), []byte("# A2"), 0o600))
	f.srv.NotifyModified(ctx, "a.md")
	var next RenderMessage
	readJSON(t, got.conn, &next)
	assert.Equal(t, TriggerModify, next.Trigger)
	assert.Contains(t, next.HTML, "A2</h1>")
}

func TestSetActiveValidation(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "# A"})

	resp := f.do(t, http.MethodPost, "/api/active", map[string]string{"path": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, f.http.URL+"/api/active", nil)
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
	assert.Equal(t, "application/problem+json", raw.Header.Get("Content-Type"))
}

func TestNotesEndpoint(t *testing.T) {
	f := newFixture(t, map[string]string{
		"b.md":           "",
		"dir/a.md":       "",
		".obsidian/x.md": "",
	})

	resp := f.do(t, http.MethodGet, "/api/notes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Notes  []string `json:"notes"`
		Active string   `json:"active"`
	}](t, resp)
	assert.Equal(t, []string{"b.md", "dir/a.md"}, body.Notes)
	assert.Empty(t, body.Active)
}

func TestPage(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = f.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleFileEvent(t *testing.T) {
	f := newFixture(t, map[string]string{"a.md": "# A"})
	ctx := context.Background()
	require.NoError(t, f.srv.Open(ctx, "a.md"))
	conn, _ := f.dial(t)

	t.Run("active note", func(t *testing.T) {
		f.srv.HandleFileEvent(filepath.Join(f.root, "a.md"))

		var msg RenderMessage
		readJSON(t, conn, &msg)
		assert.Equal(t, TriggerModify, msg.Trigger)
	})

	t.Run("non markdown file", func(t *testing.T) {
		f.srv.HandleFileEvent(filepath.Join(f.root, "a.png"))
		f.expectNothingPending(t, conn)
	})

	t.Run("settings edited by another process", func(t *testing.T) {
		blob := `{"defaultTheme":"ink","customThemes":{"mine":"#md2wechat p{color:red}"}}`
		require.NoError(t, f.store.Write([]byte(blob)))
		f.srv.HandleFileEvent(f.store.Path())

		typ, _ := readType(t, conn)
		assert.Equal(t, TypeThemes, typ)
		var msg RenderMessage
		readJSON(t, conn, &msg)
		assert.Equal(t, TriggerThemeChange, msg.Trigger)
		assert.Equal(t, "ink", msg.Theme)
		assert.Equal(t, "ink", f.repo.Get().DefaultTheme)
	})

	t.Run("unchanged settings are not broadcast", func(t *testing.T) {
		f.srv.HandleFileEvent(f.store.Path())
		f.expectNothingPending(t, conn)
	})
}

func TestWatchPicksUpWrites(t *testing.T) {
	f := newFixture(t, map[string]string{"notes/a.md": "# A"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, f.srv.Open(ctx, "notes/a.md"))
	conn, _ := f.dial(t)

	done := make(chan error, 1)
	go func() { done <- f.srv.Watch(ctx) }()
	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(f.root, "notes", "a.md"), []byte("# A2"), 0o600))

	var msg RenderMessage
	readJSON(t, conn, &msg)
	assert.Equal(t, TriggerModify, msg.Trigger)
	assert.Contains(t, msg.HTML, "A2</h1>")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop")
	}
}
