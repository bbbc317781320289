package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"worldforge/internal/client/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer records world operations and answers with a fixed world
type fakeServer struct {
	mu  sync.Mutex
	ops []map[string]any
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/world" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.ops = append(f.ops, body)
		f.mu.Unlock()

		if body["op"] == "deleteWorld" {
			_, _ = io.WriteString(w, `{"ok":true,"data":{"id":5}}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"data":{"id":5,"name":"Eld","eras":[],"settings":[],"markers":[]}}`)
	case r.URL.Path == "/health":
		_, _ = io.WriteString(w, `{"status":"healthy","time":1700000000,"storage":"ok"}`)
	case r.URL.Path == "/world/5" && r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"ok":true,"data":{"id":5,"name":"Eld","eras":[],"settings":[],"markers":[]}}`)
	case r.URL.Path == "/auth/login":
		_, _ = io.WriteString(w, `{"ok":true,"data":{"token":"tok","userId":"u1","username":"alice"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok":false,"error":"not found","code":"NOT_FOUND"}`)
	}
}

func (f *fakeServer) lastOp() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ops) == 0 {
		return nil
	}
	return f.ops[len(f.ops)-1]
}

func newTestRegistry(t *testing.T) (*Registry, *session.Session, *fakeServer) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s := session.New(srv.URL)
	s.Client.Out = io.Discard
	return NewRegistry(s), s, fake
}

func TestUnknownCommand(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	err := r.Run("teleport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.NoError(t, r.Run("   "))
}

func TestShortNames(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	for short, name := range map[string]string{"w": "worlds", "e": "era", "c": "catalog", "l": "login", "?": "help"} {
		cmd, ok := r.Lookup(short)
		require.True(t, ok, short)
		assert.Equal(t, name, cmd.Name)
	}
}

func TestWorldCommandsNeedOpenWorld(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	for _, line := range []string{"show", "era add 0 10 Dawn", "marker add 5 Fall", "setting add - Town", "drop 5"} {
		assert.ErrorIs(t, r.Run(line), errNoWorld, line)
	}
}

func TestWorldFlow(t *testing.T) {
	r, s, fake := newTestRegistry(t)

	require.NoError(t, r.Run("login alice s3cret99"))
	assert.Equal(t, "tok", s.Client.AuthToken)

	require.NoError(t, r.Run("new Eld of Old"))
	assert.Equal(t, "createWorld", fake.lastOp()["op"])
	assert.Equal(t, "Eld of Old", fake.lastOp()["name"])
	require.NotNil(t, s.CurrentWorld)

	require.NoError(t, r.Run("era add 0 - The Dawn"))
	op := fake.lastOp()
	assert.Equal(t, "createEra", op["op"])
	assert.Equal(t, float64(5), op["worldId"])
	assert.Equal(t, float64(0), op["startYear"])
	assert.Nil(t, op["endYear"])
	assert.Equal(t, "The Dawn", op["name"])

	require.NoError(t, r.Run("era move 4 up"))
	assert.Equal(t, float64(-1), fake.lastOp()["dir"])
	assert.Error(t, r.Run("era move 4 sideways"))

	require.NoError(t, r.Run("marker add - Undated"))
	assert.Nil(t, fake.lastOp()["year"])

	require.NoError(t, r.Run(`op saveEraTrade {"eraId":4,"notes":"salt"}`))
	assert.Equal(t, "saveEraTrade", fake.lastOp()["op"])
	assert.Equal(t, "salt", fake.lastOp()["notes"])

	assert.Error(t, r.Run("drop 6"))
	require.NoError(t, r.Run("drop 5"))
	assert.Equal(t, "deleteWorld", fake.lastOp()["op"])
	assert.Nil(t, s.CurrentWorld)
}

func TestCatalogArguments(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	assert.Error(t, r.Run("catalog dragons"))
	assert.Error(t, r.Run("catalog items get"))
	assert.Error(t, r.Run("catalog items add {bad"))
	assert.Error(t, r.Run("catalog items polish 3"))

	err := r.Run("catalog items get 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestOptionalInt(t *testing.T) {
	v, err := optionalInt("-")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = optionalInt("-40")
	require.NoError(t, err)
	assert.Equal(t, int64(-40), v)

	_, err = optionalInt("soon")
	assert.Error(t, err)
}
