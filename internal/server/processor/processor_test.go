package processor

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"worldforge/internal/server/core"
	"worldforge/internal/server/service"
	"worldforge/internal/server/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProcessor returns a processor over a fresh database and the id of a
// registered user to act as
func newTestProcessor(t *testing.T) (*Processor, string) {
	t.Helper()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "processor.db"), storage.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, store.InitDB(context.Background()))
	t.Cleanup(func() { store.Close() })

	svc := service.New(store, service.Options{JWTSecret: []byte("test-secret-minimum-32-characters-long")})
	user, err := svc.CreateUser(context.Background(), "builder", "secret123")
	require.NoError(t, err)
	return New(svc, nil), user.UserID
}

func run(t *testing.T, p *Processor, userID, body string) ProcessorResponse {
	t.Helper()
	cmd, err := NewCommand(userID, []byte(body))
	require.NoError(t, err)
	return p.Execute(context.Background(), cmd)
}

func world(t *testing.T, resp ProcessorResponse) *storage.World {
	t.Helper()
	require.True(t, resp.Success, "unexpected failure: %+v", resp.Error)
	w, ok := resp.Data.(*storage.World)
	require.True(t, ok, "data is %T", resp.Data)
	return w
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestWorldScenario(t *testing.T) {
	p, testUser := newTestProcessor(t)

	resp := run(t, p, testUser, `{"op": "createWorld", "name": "Aldoria"}`)
	assert.True(t, resp.Created)
	w := world(t, resp)
	require.NotNil(t, w.CreatedByID)
	assert.Equal(t, testUser, *w.CreatedByID)

	w = world(t, run(t, p, testUser, `{"op": "createEra", "worldId": `+id(w.ID)+`, "name": "First"}`))
	w = world(t, run(t, p, testUser, `{"op": "createEra", "worldId": "`+id(w.ID)+`", "name": "Second"}`))
	require.Len(t, w.Eras, 2)

	resp = run(t, p, testUser, `{"op": "moveEra", "id": `+id(w.Eras[1].ID)+`, "dir": -1}`)
	assert.False(t, resp.Created)
	w = world(t, resp)
	assert.Equal(t, "Second", w.Eras[0].Name)
	assert.Equal(t, "First", w.Eras[1].Name)

	w = world(t, run(t, p, testUser, `{"op": "deleteEra", "id": `+id(w.Eras[0].ID)+`}`))
	require.Len(t, w.Eras, 1)
	assert.Equal(t, "First", w.Eras[0].Name)
	assert.Equal(t, 0, w.Eras[0].OrderIndex)

	resp = run(t, p, testUser, `{"op": "deleteWorld", "id": `+id(w.ID)+`}`)
	require.True(t, resp.Success)
	assert.Equal(t, core.Deleted{ID: w.ID}, resp.Data)
}

func TestExecuteErrors(t *testing.T) {
	p, testUser := newTestProcessor(t)

	tests := []struct {
		name   string
		userID string
		body   string
		kind   core.Kind
		code   string
	}{
		{"unknown op", testUser, `{"op": "renameWorld"}`, core.KindValidation, core.ErrUnknownOperation},
		{"missing op", testUser, `{}`, core.KindValidation, core.ErrUnknownOperation},
		{"no session", "", `{"op": "createWorld", "name": "Aldoria"}`, core.KindUnauthorized, core.ErrUnauthorized},
		{"no session before validation", "", `{"op": "createWorld"}`, core.KindUnauthorized, core.ErrUnauthorized},
		{"blank name", testUser, `{"op": "createWorld", "name": "  "}`, core.KindValidation, core.ErrValidation},
		{"bad id", testUser, `{"op": "deleteEra", "id": -3}`, core.KindValidation, core.ErrInvalidRequest},
		{"bad dir", testUser, `{"op": "moveEra", "id": 1, "dir": 2}`, core.KindValidation, core.ErrValidation},
		{"missing era", testUser, `{"op": "deleteEra", "id": 404}`, core.KindNotFound, core.ErrNotFound},
		{"missing world", testUser, `{"op": "createEra", "worldId": 404, "name": "Lost"}`, core.KindNotFound, core.ErrNotFound},
		{"bad catalog kind", testUser, `{"op": "replaceEraCatalog", "eraId": 1, "kind": "weapon"}`, core.KindValidation, core.ErrValidation},
		{"currencies key missing", testUser, `{"op": "replaceCurrencies", "regionId": 1}`, core.KindValidation, core.ErrValidation},
		{"catalysts null", testUser, `{"op": "replaceCatalysts", "eraId": 1, "catalysts": null}`, core.KindValidation, core.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := run(t, p, tt.userID, tt.body)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Kind)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestNewCommandRejectsMalformedJSON(t *testing.T) {
	for _, body := range []string{`{"op": `, `[1, 2]`, `{"op": "createWorld"} trailing`} {
		_, err := NewCommand("user", []byte(body))
		require.Error(t, err, body)
		assert.Equal(t, core.ErrInvalidRequest, core.AsError(err).Code)
	}
}

func TestDuplicateWorldConflict(t *testing.T) {
	p, testUser := newTestProcessor(t)

	world(t, run(t, p, testUser, `{"op": "createWorld", "name": "Aldoria"}`))
	resp := run(t, p, testUser, `{"op": "createWorld", "name": "ALDORIA"}`)
	require.False(t, resp.Success)
	assert.Equal(t, core.KindConflict, resp.Error.Kind)
}

func TestOpsRegistered(t *testing.T) {
	p, _ := newTestProcessor(t)
	ops := p.Ops()

	for _, op := range []string{
		"createWorld", "updateWorld", "deleteWorld",
		"createEra", "updateEra", "moveEra", "deleteEra",
		"createSetting", "updateSetting", "deleteSetting",
		"createMarker", "updateMarker", "deleteMarker",
		"saveEraBasicInfo", "saveEraBackdrop", "saveEraTrade",
		"createGovernment", "updateGovernment", "moveGovernment", "deleteGovernment",
		"createRegion", "updateRegion", "moveRegion", "deleteRegion",
		"replaceCurrencies", "replaceEraCatalog", "replaceCatalysts",
	} {
		assert.Contains(t, ops, op)
	}
	assert.Len(t, ops, 27)
}
