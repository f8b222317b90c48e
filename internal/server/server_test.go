package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"plantracker/internal/auth"
	"plantracker/internal/database"
	"plantracker/internal/notify"
)

const testBotToken = "12345:test-bot-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, Config{
		BotToken:  testBotToken,
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}, notify.Nop{}, logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server, telegramID string) string {
	t.Helper()
	fields := url.Values{}
	fields.Set("auth_date", "9999999999")
	fields.Set("user", `{"id":`+telegramID+`,"first_name":"Tester"}`)
	initData := auth.SignInitData(testBotToken, fields)

	body, _ := json.Marshal(map[string]string{"initData": initData})
	resp, err := http.Post(ts.URL+"/api/auth/telegram", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("empty token")
	}
	return out.Token
}

func doJSON(t *testing.T, ts *httptest.Server, token, method, path string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/lists")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestListItemFlow(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "1001")

	// Create a shopping list.
	resp := doJSON(t, ts, token, "POST", "/api/lists", map[string]any{
		"type": "SHOPPING",
		"name": "Groceries",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create list status = %d, want 201", resp.StatusCode)
	}
	var list struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &list)

	// Add an item.
	resp = doJSON(t, ts, token, "POST", "/api/lists/"+list.ID+"/items", map[string]any{
		"title": "Milk",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item status = %d, want 201", resp.StatusCode)
	}
	var item struct {
		ID        string `json:"id"`
		SortIndex int    `json:"sort_index"`
	}
	decodeBody(t, resp, &item)
	if item.SortIndex != 1 {
		t.Errorf("sort index = %d, want 1", item.SortIndex)
	}

	// Toggle it checked.
	resp = doJSON(t, ts, token, "POST", "/api/lists/"+list.ID+"/items/"+item.ID+"/toggle", map[string]any{
		"isChecked": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200", resp.StatusCode)
	}
	var toggled struct {
		IsChecked bool `json:"is_checked"`
	}
	decodeBody(t, resp, &toggled)
	if !toggled.IsChecked {
		t.Error("item not checked")
	}

	// Service errors surface as structured JSON with mapped statuses.
	resp = doJSON(t, ts, token, "POST", "/api/lists/"+list.ID+"/items/missing/toggle", map[string]any{
		"isChecked": true,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("toggle missing status = %d, want 400", resp.StatusCode)
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &apiErr)
	if apiErr.Error != "Item not found" {
		t.Errorf("error = %q, want %q", apiErr.Error, "Item not found")
	}
}

func TestAccessDenialStatuses(t *testing.T) {
	ts := newTestServer(t)
	owner := login(t, ts, "1001")
	other := login(t, ts, "1002")

	resp := doJSON(t, ts, owner, "POST", "/api/lists", map[string]any{
		"type": "SHOPPING",
		"name": "Private",
	})
	var list struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &list)

	resp = doJSON(t, ts, other, "GET", "/api/lists/"+list.ID, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign list status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, ts, owner, "GET", "/api/lists/missing", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing list status = %d, want 404", resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "1001")

	resp := doJSON(t, ts, token, "GET", "/api/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	var me struct {
		TelegramID string `json:"telegram_id"`
	}
	decodeBody(t, resp, &me)
	if me.TelegramID != "1001" {
		t.Errorf("telegram id = %q, want %q", me.TelegramID, "1001")
	}
}
