package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"worldforge/internal/server/config"
	"worldforge/internal/server/processor"
	"worldforge/internal/server/service"
	"worldforge/internal/server/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Rows    json.RawMessage `json:"rows"`
	Item    json.RawMessage `json:"item"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
}

type HTTPSuite struct {
	suite.Suite
	app   *fiber.App
	svc   *service.Service
	token string
}

func TestHTTPSuite(t *testing.T) {
	suite.Run(t, new(HTTPSuite))
}

func (s *HTTPSuite) SetupTest() {
	cfg, err := config.Load("")
	s.Require().NoError(err)
	cfg.Database.Path = filepath.Join(s.T().TempDir(), "http.db")
	cfg.RateLimit.Enabled = false

	store, err := storage.NewStore(cfg.Database.Path, storage.DefaultOptions())
	s.Require().NoError(err)
	s.Require().NoError(store.InitDB(context.Background()))
	s.T().Cleanup(func() { store.Close() })

	s.svc = service.New(store, service.Options{JWTSecret: []byte("test-secret-minimum-32-characters-long")})
	s.app = NewFiberApp(processor.New(s.svc, nil), s.svc, cfg, nil)

	user, err := s.svc.CreateUser(context.Background(), "builder", "secret123")
	s.Require().NoError(err)
	s.token, err = s.svc.GenerateUserToken(context.Background(), user.UserID)
	s.Require().NoError(err)
}

func (s *HTTPSuite) do(method, target, token, body string) (int, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *HTTPSuite) worldOp(body string) storage.World {
	status, env := s.do(fiber.MethodPost, "/world", s.token, body)
	s.Require().True(env.OK, "%d %s: %s", status, env.Error, env.Details)
	var w storage.World
	s.Require().NoError(json.Unmarshal(env.Data, &w))
	return w
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func (s *HTTPSuite) TestHealth() {
	status, _ := s.do(fiber.MethodGet, "/health", "", "")
	s.Equal(fiber.StatusOK, status)
}

func (s *HTTPSuite) TestWorldScenario() {
	status, env := s.do(fiber.MethodPost, "/world", s.token, `{"op": "createWorld", "name": "Aldoria"}`)
	s.Equal(fiber.StatusCreated, status)
	s.Require().True(env.OK)

	var w storage.World
	s.Require().NoError(json.Unmarshal(env.Data, &w))
	s.NotNil(w.Eras)

	w = s.worldOp(`{"op": "createEra", "worldId": ` + itoa(w.ID) + `, "name": "First"}`)
	w = s.worldOp(`{"op": "createEra", "worldId": ` + itoa(w.ID) + `, "name": "Second"}`)
	w = s.worldOp(`{"op": "moveEra", "id": ` + itoa(w.Eras[1].ID) + `, "dir": -1}`)
	s.Equal("Second", w.Eras[0].Name)
	w = s.worldOp(`{"op": "deleteEra", "id": ` + itoa(w.Eras[0].ID) + `}`)
	s.Require().Len(w.Eras, 1)
	s.Equal(0, w.Eras[0].OrderIndex)

	status, env = s.do(fiber.MethodGet, "/world?id="+itoa(w.ID), "", "")
	s.Equal(fiber.StatusOK, status)
	var fetched storage.World
	s.Require().NoError(json.Unmarshal(env.Data, &fetched))
	s.Equal(w.ID, fetched.ID)

	status, env = s.do(fiber.MethodGet, "/world", "", "")
	s.Equal(fiber.StatusOK, status)
	var all []storage.World
	s.Require().NoError(json.Unmarshal(env.Data, &all))
	s.Len(all, 1)

	status, env = s.do(fiber.MethodPost, "/world", s.token, `{"op": "deleteWorld", "id": `+itoa(w.ID)+`}`)
	s.Equal(fiber.StatusOK, status)
	s.JSONEq(`{"id": `+itoa(w.ID)+`}`, string(env.Data))

	status, env = s.do(fiber.MethodGet, "/world?id="+itoa(w.ID), "", "")
	s.Equal(fiber.StatusNotFound, status)
	s.False(env.OK)
	s.Equal("NOT_FOUND", env.Code)
}

func (s *HTTPSuite) TestWorldErrors() {
	tests := []struct {
		name   string
		token  string
		body   string
		status int
		code   string
	}{
		{"malformed json", s.token, `{"op": `, fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown op", s.token, `{"op": "explode"}`, fiber.StatusBadRequest, "UNKNOWN_OPERATION"},
		{"no session", "", `{"op": "createWorld", "name": "A"}`, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad token", "garbage", `{"op": "createWorld"}`, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"validation", s.token, `{"op": "createWorld"}`, fiber.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing era", s.token, `{"op": "updateEra", "id": 77, "name": "x"}`, fiber.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, env := s.do(fiber.MethodPost, "/world", tt.token, tt.body)
			s.Equal(tt.status, status)
			s.False(env.OK)
			s.Equal(tt.code, env.Code)
		})
	}

	s.worldOp(`{"op": "createWorld", "name": "Aldoria"}`)
	status, env := s.do(fiber.MethodPost, "/world", s.token, `{"op": "createWorld", "name": "aldoria"}`)
	s.Equal(fiber.StatusConflict, status)
	s.Equal("CONFLICT", env.Code)

	status, _ = s.do(fiber.MethodGet, "/world?id=abc", "", "")
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *HTTPSuite) TestContentType() {
	req := httptest.NewRequest(fiber.MethodPost, "/world", strings.NewReader("op=createWorld"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func (s *HTTPSuite) TestCatalogCRUD() {
	status, env := s.do(fiber.MethodPost, "/items", "", `{"name": "Rope"}`)
	s.Equal(fiber.StatusUnauthorized, status)

	status, env = s.do(fiber.MethodPost, "/items", s.token, `{"name": "Rope", "weight": "NaN", "cost": 2}`)
	s.Require().Equal(fiber.StatusCreated, status, env.Details)
	var item map[string]any
	s.Require().NoError(json.Unmarshal(env.Item, &item))
	s.Nil(item["weight"])
	s.Equal(2.0, item["cost"])
	id := int64(item["id"].(float64))

	status, env = s.do(fiber.MethodPatch, "/items", s.token, `{"id": `+itoa(id)+`, "itemType": "gear"}`)
	s.Require().Equal(fiber.StatusOK, status, env.Details)
	s.Require().NoError(json.Unmarshal(env.Item, &item))
	s.Equal("gear", item["itemType"])
	s.Equal("Rope", item["name"])

	status, env = s.do(fiber.MethodGet, "/items?q=ro", "", "")
	s.Equal(fiber.StatusOK, status)
	var rows []map[string]any
	s.Require().NoError(json.Unmarshal(env.Rows, &rows))
	s.Len(rows, 1)

	status, env = s.do(fiber.MethodPost, "/items", s.token, `{"name": "Rope", "colour": "red"}`)
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(env.Details, "colour")

	status, env = s.do(fiber.MethodDelete, "/items?id="+itoa(id), s.token, "")
	s.Equal(fiber.StatusOK, status)
	s.JSONEq(`{"id": `+itoa(id)+`}`, string(env.Item))

	status, _ = s.do(fiber.MethodGet, "/items?id="+itoa(id), "", "")
	s.Equal(fiber.StatusNotFound, status)

	status, env = s.do(fiber.MethodPatch, "/items", s.token, `{"name": "x"}`)
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(env.Details, "id is required")
}

func (s *HTTPSuite) TestRaces() {
	_, env := s.do(fiber.MethodPost, "/skills", s.token, `{"name": "Athletics"}`)
	var skill map[string]any
	s.Require().NoError(json.Unmarshal(env.Item, &skill))
	skillID := int64(skill["id"].(float64))

	status, env := s.do(fiber.MethodPost, "/races", s.token,
		`{"name": "Dwarf", "definition": {"size": "medium"}, "bonusSkills": [{"skillId": `+itoa(skillID)+`, "points": 1}]}`)
	s.Require().Equal(fiber.StatusCreated, status, env.Details)
	var race storage.Race
	s.Require().NoError(json.Unmarshal(env.Item, &race))
	s.Require().Len(race.BonusSkills, 1)
	s.Equal("medium", race.Definition.Size)

	status, env = s.do(fiber.MethodPatch, "/races?id="+itoa(race.ID), s.token,
		`{"bonusSkills": [{"skillId": 9999}]}`)
	s.Equal(fiber.StatusNotFound, status)

	status, env = s.do(fiber.MethodGet, "/races?id="+itoa(race.ID), "", "")
	s.Equal(fiber.StatusOK, status)
	s.Require().NoError(json.Unmarshal(env.Item, &race))
	s.Len(race.BonusSkills, 1)

	status, _ = s.do(fiber.MethodDelete, "/skills?id="+itoa(skillID), s.token, "")
	s.Equal(fiber.StatusConflict, status)

	status, _ = s.do(fiber.MethodDelete, "/races?id="+itoa(race.ID), s.token, "")
	s.Equal(fiber.StatusOK, status)
}

func (s *HTTPSuite) TestAuthFlow() {
	status, env := s.do(fiber.MethodPost, "/auth/register", "", `{"username": "Mira", "password": "password"}`)
	s.Equal(fiber.StatusBadRequest, status, "password without a number")

	status, env = s.do(fiber.MethodPost, "/auth/register", "", `{"username": "bad name", "password": "secret123"}`)
	s.Equal(fiber.StatusBadRequest, status)

	status, env = s.do(fiber.MethodPost, "/auth/register", "", `{"username": "Mira", "password": "secret123"}`)
	s.Require().Equal(fiber.StatusCreated, status, env.Details)

	status, _ = s.do(fiber.MethodPost, "/auth/register", "", `{"username": "mira", "password": "secret123"}`)
	s.Equal(fiber.StatusConflict, status)

	status, env = s.do(fiber.MethodPost, "/auth/login", "", `{"username": "mira", "password": "wrong123"}`)
	s.Equal(fiber.StatusUnauthorized, status)
	s.Equal("invalid credentials", env.Error)

	status, env = s.do(fiber.MethodPost, "/auth/login", "", `{"username": "MIRA", "password": "secret123"}`)
	s.Require().Equal(fiber.StatusOK, status)
	var auth AuthResponse
	s.Require().NoError(json.Unmarshal(env.Data, &auth))
	s.Equal("mira", auth.Username)

	status, env = s.do(fiber.MethodGet, "/auth/me", auth.Token, "")
	s.Equal(fiber.StatusOK, status)
	s.Contains(string(env.Data), `"username":"mira"`)

	status, _ = s.do(fiber.MethodGet, "/auth/me", "", "")
	s.Equal(fiber.StatusUnauthorized, status)
}

func (s *HTTPSuite) TestDeletedUserSession() {
	ctx := context.Background()
	user, err := s.svc.CreateUser(ctx, "ghost", "secret123")
	s.Require().NoError(err)
	token, err := s.svc.GenerateUserToken(ctx, user.UserID)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.DeleteUser(ctx, user.UserID))

	status, env := s.do(fiber.MethodPost, "/world", token, `{"op": "createWorld", "name": "Haunt"}`)
	s.Equal(fiber.StatusUnauthorized, status)
	s.Equal("UNAUTHORIZED", env.Code)

	status, _ = s.do(fiber.MethodPost, "/items", token, `{"name": "Chain"}`)
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.do(fiber.MethodGet, "/auth/me", token, "")
	s.Equal(fiber.StatusUnauthorized, status)

	// Reads stay open to a stale session
	status, _ = s.do(fiber.MethodGet, "/world", token, "")
	s.Equal(fiber.StatusOK, status)
}

func TestSessionCookie(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.RateLimit.Enabled = false

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "cookie.db"), storage.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, store.InitDB(context.Background()))
	defer store.Close()

	svc := service.New(store, service.Options{JWTSecret: []byte("test-secret-minimum-32-characters-long")})
	app := NewFiberApp(processor.New(svc, nil), svc, cfg, nil)

	req := httptest.NewRequest(fiber.MethodPost, "/auth/register", strings.NewReader(`{"username": "cookie", "password": "secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var session string
	for _, c := range resp.Cookies() {
		if c.Name == cfg.Auth.CookieName {
			session = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, session)

	req = httptest.NewRequest(fiber.MethodPost, "/world", strings.NewReader(`{"op": "createWorld", "name": "Via Cookie"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cfg.Auth.CookieName+"="+session)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.RateLimit.AuthPerMinute = 2

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "limit.db"), storage.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, store.InitDB(context.Background()))
	defer store.Close()

	svc := service.New(store, service.Options{JWTSecret: []byte("test-secret-minimum-32-characters-long")})
	app := NewFiberApp(processor.New(svc, nil), svc, cfg, nil)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/auth/login", strings.NewReader(`{"username": "x", "password": "y"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}
