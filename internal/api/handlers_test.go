package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmrzaf/fixturegen/internal/app"
	"github.com/mmrzaf/fixturegen/internal/config"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, *app.Service) {
	t.Helper()

	fixturesDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(fixturesDir, "users.yaml"), []byte(`
users:
  type: object
  properties:
    name:
      type: string
    score:
      x-generator:
        type: uniform_int
        params:
          min: 1
          max: 10
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		FixturesDir: fixturesDir,
		Target:      domain.TargetConfig{Kind: domain.TargetSQLite, DSN: filepath.Join(t.TempDir(), "target.db")},
		LogLevel:    "error",
		LogFormat:   "json",
		BindAddr:    ":0",
	}
	svc, err := app.NewService(context.Background(), cfg, logging.NewLogger("error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	mux := http.NewServeMux()
	NewHandler(svc).Routes(mux)
	return LoggingMiddleware(logging.NewLogger("error"), mux), svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateRecords_ThenClear(t *testing.T) {
	srv, svc := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/fixtures/users/records",
		`{"quantity": 3, "override": [{"name": "a"}, {"name": "b"}]}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var created createResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Len(t, created.Records, 3)
	assert.Equal(t, "a", created.Records[0].Record["name"])
	assert.Equal(t, "b", created.Records[1].Record["name"])
	assert.Equal(t, "a", created.Records[2].Record["name"])

	resp = do(t, srv, http.MethodGet, "/api/v1/created/users", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var ids []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ids))
	assert.Equal(t, created.Records[0].ID, ids[0])
	assert.Len(t, ids, 3)

	resp = do(t, srv, http.MethodDelete, "/api/v1/created", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, svc.Factory().Created())
}

func TestCreateRecords_DefaultsToOne(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/v1/fixtures/users/records", "")
	require.Equal(t, http.StatusCreated, resp.Code)
	var created createResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Len(t, created.Records, 1)
	assert.NotEmpty(t, created.Records[0].ID)
}

func TestCreateRecords_ErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown fixture", "/api/v1/fixtures/nope/records", `{}`, http.StatusNotFound},
		{"refs not an array", "/api/v1/fixtures/users/records", `{"refs": {"$id": "x"}}`, http.StatusBadRequest},
		{"override not an object", "/api/v1/fixtures/users/records", `{"override": 3}`, http.StatusBadRequest},
		{"empty override sequence", "/api/v1/fixtures/users/records", `{"quantity": 2, "override": []}`, http.StatusBadRequest},
		{"negative quantity", "/api/v1/fixtures/users/records", `{"quantity": -1}`, http.StatusBadRequest},
		{"unknown field", "/api/v1/fixtures/users/records", `{"qty": 1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.Code)
		})
	}
}

func TestListAndGetFixtures(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/v1/fixtures", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var list []app.FixtureSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, []string{"name", "score"}, list[0].Properties)

	resp = do(t, srv, http.MethodGet, "/api/v1/fixtures/users", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var detail app.FixtureDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, "users", detail.Name)
	require.NotNil(t, detail.Schema)
	assert.Equal(t, "uniform_int", detail.Schema.Properties["score"].Generator.Type)

	resp = do(t, srv, http.MethodGet, "/api/v1/fixtures/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = do(t, srv, http.MethodGet, "/api/v1/created/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHealthAndTarget(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, srv, http.MethodGet, "/api/v1/target", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var target domain.TargetConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&target))
	assert.Equal(t, domain.TargetSQLite, target.Kind)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ConfigurationError("op", "", nil)))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.NotFoundError("op", "x")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(domain.GenerationError("op", "x", nil)))
	assert.Equal(t, http.StatusBadGateway, statusFor(domain.PersistenceError("op", "x", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestLoggingMiddleware_LevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter("debug", &buf)
	h := LoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	line := buf.String()
	assert.True(t, strings.Contains(line, `"level":"error"`), line)
	assert.Contains(t, line, `"status":502`)
}
