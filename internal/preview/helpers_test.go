package preview

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/settings"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/theme"
	"github.com/imhaiqiao/obsidian-convert-markdown-to-html-plugin/internal/vault"
)

type fixture struct {
	srv   *Server
	http  *httptest.Server
	repo  *settings.Repository
	store *settings.FileStore
	root  string
}

// newFixture builds a vault from files and serves a preview over it.
// Settings persist to <vault>/.md2wechat/settings.json.
func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	v, err := vault.Open(root)
	require.NoError(t, err)

	store := settings.NewFileStore(filepath.Join(v.Root(), ".md2wechat", "settings.json"))
	repo := settings.NewRepository(store)
	_, err = repo.Load()
	require.NoError(t, err)

	srv := New(Config{
		Vault:        v,
		Themes:       theme.NewService(theme.DefaultCatalog(), repo),
		Settings:     repo,
		SettingsPath: store.Path(),
		Debounce:     20 * time.Millisecond,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().CloseAll()
		ts.Close()
	})

	return &fixture{srv: srv, http: ts, repo: repo, store: store, root: v.Root()}
}

// dial connects a page and consumes the initial open message.
func (f *fixture) dial(t *testing.T) (*websocket.Conn, RenderMessage) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	var first RenderMessage
	readJSON(t, conn, &first)
	return conn, first
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.http.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(v))
}

// readType reads one frame and returns its type with the raw payload.
func readType(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var raw json.RawMessage
	readJSON(t, conn, &raw)
	var head struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &head))
	return head.Type, raw
}

// expectNothingPending broadcasts a marker frame and asserts it is the next
// frame the page sees. A read timeout would break the connection, so silence
// is checked by ordering instead.
func (f *fixture) expectNothingPending(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	f.srv.Hub().Broadcast(map[string]string{"type": "marker"})
	typ, raw := readType(t, conn)
	require.Equal(t, "marker", typ, "unexpected frame: %s", raw)
}
