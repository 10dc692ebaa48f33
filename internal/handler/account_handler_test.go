package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/cache/memory"
	"github.com/halcyon-labs/emblem/internal/config"
	"github.com/halcyon-labs/emblem/internal/repository/sqlite"
	"github.com/halcyon-labs/emblem/internal/service"
)

// newTestServer wires the full HTTP surface over an in-memory SQLite
// store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(context.Background(), config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            ":memory:",
		JournalMode:     "MEMORY",
		BusyTimeout:     5000,
		CacheSize:       -2000,
		SynchronousMode: "OFF",
	}, logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repos := sqlite.NewRepositories(db)
	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	accountService := service.NewAccountService(repos.User, logger)
	badgeService := service.NewBadgeService(repos.Badge, repos.Achievement, cache, nil, logger)
	certService := service.NewCertificationService(repos.Certification, repos.User, logger)
	profileService := service.NewProfileService(repos.User, repos.Achievement, repos.Certification, cache, logger)

	router := NewRouter(RouterConfig{
		AccountHandler: NewAccountHandler(accountService, profileService, certService, logger),
		BadgeHandler:   NewBadgeHandler(badgeService, logger),
		DB:             db,
		Logger:         logger,
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	envelope, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := envelope["code"].(string)
	return code
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/register", map[string]any{
		"username": "alice",
		"password": "secret1",
		"email":    "a@x.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if body["user_id"] == nil {
		t.Error("expected user_id in response")
	}

	// Duplicate username is a conflict even with a fresh email.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/register", map[string]any{
		"username": "alice",
		"password": "other",
		"email":    "b@y.com",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "user_already_exists" {
		t.Errorf("expected user_already_exists, got %q", code)
	}

	// Missing password.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/register", map[string]any{
		"username": "bob",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "missing_field" {
		t.Errorf("expected missing_field, got %q", code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)

	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/register", map[string]any{
		"username": "alice",
		"password": "secret1",
	}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/login", map[string]any{
		"username": "alice",
		"password": "secret1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["user_id"] == nil {
		t.Error("expected user_id in response")
	}

	// Wrong password and unknown user return identical envelopes.
	respWrong, bodyWrong := doJSON(t, http.MethodPost, srv.URL+"/api/v1/login", map[string]any{
		"username": "alice",
		"password": "wrong",
	})
	respUnknown, bodyUnknown := doJSON(t, http.MethodPost, srv.URL+"/api/v1/login", map[string]any{
		"username": "mallory",
		"password": "secret1",
	})
	if respWrong.StatusCode != http.StatusUnauthorized || respUnknown.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401/401, got %d/%d", respWrong.StatusCode, respUnknown.StatusCode)
	}
	if errorCode(t, bodyWrong) != errorCode(t, bodyUnknown) {
		t.Errorf("failure envelopes differ: %v vs %v", bodyWrong, bodyUnknown)
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/register", map[string]any{
		"username": "alice",
		"password": "secret1",
	})
	userID := int64(body["user_id"].(float64))
	url := srv.URL + "/api/v1/users/" + strconv.FormatInt(userID, 10) + "/profile"

	// Set one field.
	resp, _ := doJSON(t, http.MethodPut, url, map[string]any{"full_name": "Alice Z"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Omitted field stays, empty string clears.
	resp, _ = doJSON(t, http.MethodPut, url, map[string]any{"profile_bio": "hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, profile := doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	user := profile["user"].(map[string]any)
	if user["full_name"] != "Alice Z" {
		t.Errorf("expected full_name preserved, got %v", user["full_name"])
	}
	if user["profile_bio"] != "hello" {
		t.Errorf("expected profile_bio hello, got %v", user["profile_bio"])
	}

	// Empty patch is rejected.
	resp, errBody := doJSON(t, http.MethodPut, url, map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, errBody); code != "no_update_fields" {
		t.Errorf("expected no_update_fields, got %q", code)
	}

	// Unknown user is a 404.
	resp, errBody = doJSON(t, http.MethodPut, srv.URL+"/api/v1/users/9999/profile", map[string]any{"full_name": "X"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if code := errorCode(t, errBody); code != "user_not_found" {
		t.Errorf("expected user_not_found, got %q", code)
	}
}

func TestBadgeEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/badges", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if badges, ok := body["badges"].([]any); !ok || len(badges) != 0 {
		t.Errorf("expected empty badge list, got %v", body["badges"])
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/badges/42", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "badge_not_found" {
		t.Errorf("expected badge_not_found, got %q", code)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/achievements/not-a-uuid", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "bad_request" {
		t.Errorf("expected bad_request, got %q", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
}
