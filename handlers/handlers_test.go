package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"beamclip/config"
	"beamclip/internal/services"
	"beamclip/models"
	"beamclip/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		URL:             "http://beamclip.test",
		CodeLength:      6,
		RoomTTL:         10 * time.Minute,
		RetentionWindow: time.Hour,
		MaxContentChars: 10000,
		// Quiet after the first pass so tests can seed expired rooms
		MinSweepInterval: time.Hour,
	}
}

func setupTest(t *testing.T) (*gin.Engine, storage.Store) {
	t.Helper()

	cfg := testConfig()
	store := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := services.NewLifecycle(store, cfg, logger)

	roomHandler := NewRoomHandler(service)
	clipboardHandler := NewClipboardHandler(service)
	qrHandler := NewQRHandler(service, cfg)

	router := gin.New()
	router.POST("/api/rooms", roomHandler.Create)
	router.GET("/api/rooms/:code", roomHandler.Get)
	router.POST("/api/rooms/:code/send", clipboardHandler.Send)
	router.GET("/api/rooms/:code/receive", clipboardHandler.Receive)
	router.GET("/api/rooms/:code/qr", qrHandler.Room)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	parsed := map[string]interface{}{}
	if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
		}
	}
	return w, parsed
}

func createRoom(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w, body := doJSON(t, router, "POST", "/api/rooms", "")
	if w.Code != http.StatusOK {
		t.Fatalf("create room returned %d: %s", w.Code, w.Body.String())
	}
	code, _ := body["code"].(string)
	if code == "" {
		t.Fatalf("create room returned no code: %s", w.Body.String())
	}
	return code
}

func seedExpiredRoom(t *testing.T, store storage.Store, code string) {
	t.Helper()
	now := time.Now()
	room := &models.Room{
		ID:        "expired-" + code,
		Code:      code,
		CreatedAt: now.Add(-20 * time.Minute),
		ExpiresAt: now.Add(-10 * time.Minute),
	}
	if err := store.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("seed expired room failed: %v", err)
	}
}

func TestCreateRoomReturnsCode(t *testing.T) {
	router, _ := setupTest(t)

	code := createRoom(t, router)
	if !regexp.MustCompile(`^[A-HJ-NP-Z2-9]{6}$`).MatchString(code) {
		t.Errorf("code %q outside the restricted alphabet", code)
	}
}

func TestGetRoom(t *testing.T) {
	router, _ := setupTest(t)
	code := createRoom(t, router)

	// Lowercase input is normalized
	w, body := doJSON(t, router, "GET", "/api/rooms/"+strings.ToLower(code), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["code"] != code {
		t.Errorf("expected code %q, got %v", code, body["code"])
	}
	for _, field := range []string{"id", "expiresAt", "serverNow"} {
		if _, ok := body[field]; !ok {
			t.Errorf("response missing %q: %s", field, w.Body.String())
		}
	}
}

func TestGetRoomNotFound(t *testing.T) {
	router, _ := setupTest(t)

	w, _ := doJSON(t, router, "GET", "/api/rooms/ZZZZZZ", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetRoomExpired(t *testing.T) {
	router, store := setupTest(t)

	// Burn the first opportunistic sweep, then seed an expired row
	createRoom(t, router)
	seedExpiredRoom(t, store, "EXPIRD")

	w, body := doJSON(t, router, "GET", "/api/rooms/EXPIRD", "")
	if w.Code != http.StatusGone {
		t.Fatalf("expected 410 for present-but-expired room, got %d", w.Code)
	}
	if body["error"] != "Room expired" {
		t.Errorf("expected distinct expired message, got %v", body["error"])
	}
}

func TestSendAndReceiveWithConsume(t *testing.T) {
	router, _ := setupTest(t)
	code := createRoom(t, router)

	w, body := doJSON(t, router, "POST", "/api/rooms/"+code+"/send", `{"content":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("send returned %d: %s", w.Code, w.Body.String())
	}
	if body["id"] == nil || body["createdAt"] == nil {
		t.Fatalf("send response incomplete: %s", w.Body.String())
	}

	w, body = doJSON(t, router, "GET", "/api/rooms/"+code+"/receive?consume=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("receive returned %d: %s", w.Code, w.Body.String())
	}
	item, ok := body["item"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected item object, got %s", w.Body.String())
	}
	if item["content"] != "hello" {
		t.Errorf("expected content hello, got %v", item["content"])
	}

	// Consumed items are delivered at most once
	w, body = doJSON(t, router, "GET", "/api/rooms/"+code+"/receive?consume=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("second receive returned %d", w.Code)
	}
	if body["item"] != nil {
		t.Fatalf("expected item null after consume, got %s", w.Body.String())
	}
}

func TestReceiveWithoutConsumeRepeats(t *testing.T) {
	router, _ := setupTest(t)
	code := createRoom(t, router)

	if w, _ := doJSON(t, router, "POST", "/api/rooms/"+code+"/send", `{"content":"peek"}`); w.Code != http.StatusOK {
		t.Fatalf("send failed: %d", w.Code)
	}

	for i := 0; i < 2; i++ {
		w, body := doJSON(t, router, "GET", "/api/rooms/"+code+"/receive", "")
		if w.Code != http.StatusOK {
			t.Fatalf("receive returned %d", w.Code)
		}
		item, ok := body["item"].(map[string]interface{})
		if !ok || item["content"] != "peek" {
			t.Fatalf("expected repeated peek, got %s", w.Body.String())
		}
	}
}

func TestSendValidation(t *testing.T) {
	router, _ := setupTest(t)
	code := createRoom(t, router)

	tests := []struct {
		name string
		body string
	}{
		{"no body", ""},
		{"missing content", `{}`},
		{"whitespace content", `{"content":"   \n  "}`},
		{"oversized content", `{"content":"` + strings.Repeat("a", 10001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, router, "POST", "/api/rooms/"+code+"/send", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if body["error"] == nil {
				t.Errorf("expected error message in response")
			}
		})
	}
}

func TestSendToMissingOrExpiredRoom(t *testing.T) {
	router, store := setupTest(t)
	createRoom(t, router)
	seedExpiredRoom(t, store, "EXPIRD")

	w, _ := doJSON(t, router, "POST", "/api/rooms/ZZZZZZ/send", `{"content":"hello"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", w.Code)
	}

	w, _ = doJSON(t, router, "POST", "/api/rooms/EXPIRD/send", `{"content":"hello"}`)
	if w.Code != http.StatusGone {
		t.Fatalf("expected 410 for expired room, got %d", w.Code)
	}
}

func TestReceiveFromMissingOrExpiredRoom(t *testing.T) {
	router, store := setupTest(t)
	createRoom(t, router)
	seedExpiredRoom(t, store, "EXPIRD")

	w, _ := doJSON(t, router, "GET", "/api/rooms/ZZZZZZ/receive?consume=true", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w, _ = doJSON(t, router, "GET", "/api/rooms/EXPIRD/receive?consume=true", "")
	if w.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", w.Code)
	}
}

func TestRoomQRCode(t *testing.T) {
	router, _ := setupTest(t)
	code := createRoom(t, router)

	req := httptest.NewRequest("GET", "/api/rooms/"+code+"/qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected PNG payload")
	}
}

func TestHealth(t *testing.T) {
	router := gin.New()
	router.GET("/health", NewSystemHandler().Health)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}
