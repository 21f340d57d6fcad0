package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/linkdeck/linkdeck/internal/catalog"
	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/httpserver/handlers"
	"github.com/linkdeck/linkdeck/internal/httpserver/mw"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/store/sqlite"
	linksync "github.com/linkdeck/linkdeck/internal/sync"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	router  chi.Router
	store   *sqlite.Store
	catalog *catalog.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	store, err := sqlite.New(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := logger.New("error", false)
	cat := catalog.New(store, nil, log)
	syncSvc := linksync.NewService(store, cat, log)
	promoter := linksync.NewPromoter(store, cat, log)

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		JWTSecret: testSecret,
		Store:     store,
		Catalog:   cat,
		Sync:      syncSvc,
		Promoter:  promoter,
	}

	r := chi.NewRouter()
	r.Route("/api/config", func(r chi.Router) {
		r.Use(mw.Auth(d.JWTSecret, d.Logger))
		r.Get("/status", handlers.Status(d))
		r.Post("/refresh", handlers.Refresh(d))
		r.With(mw.RequireRole(mw.RoleAdmin, d.Logger)).Post("/promote", handlers.Promote(d))
	})
	r.With(mw.Auth(d.JWTSecret, d.Logger), mw.RequireRole(mw.RoleAdmin, d.Logger)).
		Post("/api/catalog/publish", handlers.Publish(d))
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))

	return &testEnv{router: r, store: store, catalog: cat}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, userID, role string) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func publishTestCatalog(t *testing.T, cat *catalog.Service, baseVersion int64, names ...string) {
	t.Helper()

	entries := make([]domain.LinkDefinition, 0, len(names))
	for i, name := range names {
		entries = append(entries, domain.LinkDefinition{
			Name: name, URL: "https://" + name + ".internal", GroupName: "Tools", SortOrder: i,
		})
	}
	if _, err := cat.Publish(context.Background(), baseVersion, entries); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)
	member := token(t, "u1", "member")

	rec := env.do(t, http.MethodGet, "/api/config/status", member, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var status domain.ConfigStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if status.Status != domain.StatusNoCatalog {
		t.Errorf("Status = %s, want no-catalog", status.Status)
	}

	publishTestCatalog(t, env.catalog, 0, "wiki")

	rec = env.do(t, http.MethodGet, "/api/config/status", member, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if status.Status != domain.StatusUpdateAvailable || status.ActiveVersion != 1 {
		t.Errorf("status = %+v, want update-available at version 1", status)
	}
}

func TestStatusRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/config/status", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)
	member := token(t, "u1", "member")

	// No catalog yet.
	rec := env.do(t, http.MethodPost, "/api/config/refresh", member, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d before first publish, want 404", rec.Code)
	}

	publishTestCatalog(t, env.catalog, 0, "wiki", "vault")

	rec = env.do(t, http.MethodPost, "/api/config/refresh", member, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var result domain.RefreshResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("result = %+v, want 2 created", result)
	}
	if result.Errors == nil {
		t.Errorf("Errors field absent, want empty list")
	}
}

func TestPublishEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "admin1", "admin")
	member := token(t, "u1", "member")

	body := `{"base_version":0,"entries":[{"name":"wiki","url":"https://wiki.internal","group_name":"Tools"}]}`

	// Members cannot publish.
	rec := env.do(t, http.MethodPost, "/api/catalog/publish", member, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member publish status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/catalog/publish", admin, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Version != 1 {
		t.Errorf("version = %d, want 1", resp.Version)
	}

	// Same base again: conflict.
	rec = env.do(t, http.MethodPost, "/api/catalog/publish", admin, body)
	if rec.Code != http.StatusConflict {
		t.Errorf("stale publish status = %d, want 409", rec.Code)
	}

	// Empty entries rejected.
	rec = env.do(t, http.MethodPost, "/api/catalog/publish", admin, `{"base_version":1,"entries":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty publish status = %d, want 400", rec.Code)
	}
}

func TestPromoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "admin1", "admin")
	member := token(t, "u1", "member")

	publishTestCatalog(t, env.catalog, 0, "wiki")

	// Materialize and edit the admin's record.
	rec := env.do(t, http.MethodPost, "/api/config/refresh", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rec.Code)
	}
	records, err := env.store.ListActiveSystemRecords(context.Background(), "admin1")
	if err != nil {
		t.Fatalf("ListActiveSystemRecords: %v", err)
	}
	wiki := records[0]
	wiki.URL = "https://wiki.internal/v2"
	if err := env.store.UpdateRecordContent(context.Background(), wiki); err != nil {
		t.Fatalf("UpdateRecordContent: %v", err)
	}

	// Members cannot promote.
	body := fmt.Sprintf(`{"record_id":%d}`, wiki.ID)
	rec = env.do(t, http.MethodPost, "/api/config/promote", member, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member promote status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/config/promote", admin, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Version != 2 {
		t.Errorf("version = %d, want 2", resp.Version)
	}

	// Unknown record.
	rec = env.do(t, http.MethodPost, "/api/config/promote", admin, `{"record_id":9999}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown record status = %d, want 404", rec.Code)
	}

	// Missing record_id.
	rec = env.do(t, http.MethodPost, "/api/config/promote", admin, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", rec.Code)
	}
}
