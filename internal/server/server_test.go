package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalai/assistant/internal/agent"
	"github.com/personalai/assistant/internal/config"
	"github.com/personalai/assistant/internal/server"
	"github.com/personalai/assistant/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		APIPrefix:          "/api",
		APIKeyHeader:       "X-API-Key",
		CORSOrigins:        []string{"http://localhost:5173"},
		RateLimitPerMinute: 100,
		MaxActionLength:    200,
		EnableMetrics:      true,
	}
}

func newRepo(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return store.New(db), mock
}

type runnerFunc func(ctx context.Context, a agent.Action) *agent.Envelope

func (f runnerFunc) Run(ctx context.Context, a agent.Action) *agent.Envelope { return f(ctx, a) }

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPublicRoutes(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectPing()
	r := server.NewRouter(testConfig(), server.Deps{Repo: repo})

	rr := serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Welcome to the Personal AI Assistant API")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = serve(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"database":"ok"`)

	rr = serve(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "assistant_http_requests_total")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAIRoutesUnavailableWithoutModel(t *testing.T) {
	repo, _ := newRepo(t)
	r := server.NewRouter(testConfig(), server.Deps{Repo: repo})

	rr := serve(r, http.MethodPost, "/generate-message/", `{"action": "show departments"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = serve(r, http.MethodPost, "/api/weather-assistant/dress-recommendation", `{}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPipelineRoutes(t *testing.T) {
	repo, _ := newRepo(t)
	pipeline := runnerFunc(func(_ context.Context, a agent.Action) *agent.Envelope {
		return &agent.Envelope{
			OriginalQuery: a.Text,
			Intent:        agent.IntentQueryingEmployeeData,
			SQLQuery:      "SELECT name FROM departments",
			Results:       []store.Row{{"name": "Main Department"}},
			UserMessage:   "Main Department is the only department.",
			Metadata:      map[string]any{},
		}
	})
	r := server.NewRouter(testConfig(), server.Deps{Repo: repo, Pipeline: pipeline})

	rr := serve(r, http.MethodPost, "/generate-message/", `{"action": "list departments"}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_friendly_message": "Main Department is the only department."}`, rr.Body.String())

	rr = serve(r, http.MethodPost, "/api/nl-query/process", `{"query": "list departments"}`, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"sql_query":"SELECT name FROM departments"`)
}

func TestAuthGuardsAPIRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.EnableAuth = true
	cfg.APIKeys = []string{"secret"}

	repo, mock := newRepo(t)
	mock.ExpectQuery(`SELECT id, name FROM departments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(4), "Main Department"))
	r := server.NewRouter(cfg, server.Deps{Repo: repo})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/departments/", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "", nil).Code)

	rr := serve(r, http.MethodGet, "/departments/", "", map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"departments": [{"id": 4, "name": "Main Department"}]}`, rr.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
