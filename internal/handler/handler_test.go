package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/family-meal-planner/internal/familykey"
	"github.com/sakif/family-meal-planner/internal/handler"
	"github.com/sakif/family-meal-planner/internal/localstore"
	"github.com/sakif/family-meal-planner/internal/repository/memory"
	"github.com/sakif/family-meal-planner/internal/service"
)

type testEnv struct {
	router   chi.Router
	sessions *service.SessionController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store := localstore.New(memory.New(), logger)
	sessions := service.NewSessionController(
		store,
		familykey.New(nil),
		service.NewMealPlanner(service.NewRandomSelector(nil), 0, logger),
		service.NewShoppingListGenerator(service.StaticShoppingSource{}, 0, logger),
		logger,
	)

	sh := handler.NewSessionHandler(sessions, logger)
	fh := handler.NewFoodHandler(sessions, logger)
	ph := handler.NewPlanHandler(sessions, logger)
	lh := handler.NewShoppingHandler(sessions, logger)

	r := chi.NewRouter()
	r.Get("/api/session", sh.HandleState)
	r.Post("/api/onboarding/mode", sh.HandleSelectMode)
	r.Post("/api/onboarding/back", sh.HandleBack)
	r.Post("/api/onboarding", sh.HandleComplete)
	r.Post("/api/logout", sh.HandleLogout)
	r.Get("/api/avatars", sh.HandleAvatars)
	r.Get("/api/family/members", sh.HandleMembers)
	r.Get("/api/foods", fh.HandleList)
	r.Get("/api/foods/contributors", fh.HandleContributors)
	r.Post("/api/foods", fh.HandleCreate)
	r.Patch("/api/foods/{id}", fh.HandleUpdate)
	r.Delete("/api/foods/{id}", fh.HandleDelete)
	r.Get("/api/plan", ph.HandleGet)
	r.Post("/api/plan", ph.HandleGenerate)
	r.Post("/api/plan/feedback", ph.HandleFeedback)
	r.Post("/api/shopping", lh.HandleOpen)
	r.Get("/api/shopping", lh.HandleGet)
	r.Delete("/api/shopping", lh.HandleClose)
	r.Post("/api/shopping/items/{id}/toggle", lh.HandleToggle)
	r.Post("/api/shopping/reset", lh.HandleReset)
	r.Post("/api/shopping/check-all", lh.HandleCheckAll)

	return &testEnv{router: r, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// join signs the device into a family the quick way.
func (e *testEnv) join(t *testing.T) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/onboarding",
		`{"mode":"join","familyKey":"calm-river-home","userName":"Ravi","avatar":"🥕"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

// notice is a mutation response with its data decoded as T.
type notice[T any] struct {
	Notice string `json:"notice"`
	Data   T      `json:"data"`
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, errorType string) handler.ErrorResponse {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	body := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, errorType, body.Error)
	return body
}
