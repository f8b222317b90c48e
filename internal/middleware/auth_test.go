package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"plantracker/internal/auth"
	"plantracker/internal/database"
	"plantracker/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) *store.UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewUserStore(db)
}

const testBotToken = "12345:test-bot-token"

func TestRequireAuthNoCredentials(t *testing.T) {
	users := setupAuthMiddlewareDB(t)
	tokens := auth.NewTokenManager("secret", time.Hour)

	handler := RequireAuth(tokens, users, testBotToken, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	users := setupAuthMiddlewareDB(t)
	tokens := auth.NewTokenManager("secret", time.Hour)

	handler := RequireAuth(tokens, users, testBotToken, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	users := setupAuthMiddlewareDB(t)
	tokens := auth.NewTokenManager("secret", time.Hour)

	u, err := users.Upsert("123456", "Alice", "", "alice", "")
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	token, err := tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotUserID string
	handler := RequireAuth(tokens, users, testBotToken, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != u.ID {
		t.Errorf("user id = %q, want %q", gotUserID, u.ID)
	}
}

func TestRequireAuthInitDataUpsertsUser(t *testing.T) {
	users := setupAuthMiddlewareDB(t)
	tokens := auth.NewTokenManager("secret", time.Hour)

	fields := url.Values{}
	fields.Set("auth_date", "9999999999")
	fields.Set("user", `{"id":777,"first_name":"Bob","username":"bob"}`)
	initData := auth.SignInitData(testBotToken, fields)

	var gotUserID string
	handler := RequireAuth(tokens, users, testBotToken, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(initDataHeader, initData)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	u, err := users.GetByTelegramID("777")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u == nil {
		t.Fatal("expected user created from init data")
	}
	if gotUserID != u.ID {
		t.Errorf("user id = %q, want %q", gotUserID, u.ID)
	}
	if u.FirstName != "Bob" {
		t.Errorf("first name = %q, want %q", u.FirstName, "Bob")
	}
}

func TestRequireAuthStaleInitData(t *testing.T) {
	users := setupAuthMiddlewareDB(t)
	tokens := auth.NewTokenManager("secret", time.Hour)

	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(time.Now().Add(-10*time.Minute).Unix()))
	fields.Set("user", `{"id":777,"first_name":"Bob"}`)
	initData := auth.SignInitData(testBotToken, fields)

	handler := RequireAuth(tokens, users, testBotToken, 5*time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(initDataHeader, initData)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthTamperedInitData(t *testing.T) {
	users := setupAuthMiddlewareDB(t)
	tokens := auth.NewTokenManager("secret", time.Hour)

	fields := url.Values{}
	fields.Set("auth_date", "9999999999")
	fields.Set("user", `{"id":777,"first_name":"Bob"}`)
	initData := auth.SignInitData("other-bot-token", fields)

	handler := RequireAuth(tokens, users, testBotToken, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(initDataHeader, initData)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
