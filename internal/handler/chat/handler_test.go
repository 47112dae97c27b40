package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/wellnessweavers/companion/internal/middleware"
	"github.com/wellnessweavers/companion/internal/model/chat"
	"github.com/wellnessweavers/companion/internal/model/persona"
	chatservice "github.com/wellnessweavers/companion/internal/service/chat"
	"github.com/wellnessweavers/companion/pkg/apiclient"
)

func setupRouter() *chi.Mux {
	companion := chatservice.NewCompanion(chatservice.NewService(), persona.NewMemoryStore(persona.Seed()), nil, nil)
	r := chi.NewRouter()
	r.Use(middleware.UserID)
	New(companion).RegisterRoutes(r)
	return r
}

func sendChat(r http.Handler, path, user string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", user)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatReplies(t *testing.T) {
	r := setupRouter()
	resp := sendChat(r, "/chat", "user-1", map[string]string{"message": "I feel so anxious about tomorrow"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out apiclient.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Response == "" || out.SessionID == "" {
		t.Fatalf("expected reply and session id, got %+v", out)
	}
	if out.Emotion != "anxious" {
		t.Fatalf("expected anxious, got %q", out.Emotion)
	}

	again := sendChat(r, "/chat/message", "user-1", map[string]string{"message": "thanks", "session_id": out.SessionID})
	var second apiclient.ChatResponse
	_ = json.NewDecoder(again.Body).Decode(&second)
	if second.SessionID != out.SessionID {
		t.Fatalf("session should be resumed, got %q", second.SessionID)
	}
}

func TestChatValidation(t *testing.T) {
	r := setupRouter()
	if resp := sendChat(r, "/chat", "user-1", map[string]string{"message": "  "}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", resp.Code)
	}
	if resp := sendChat(r, "/chat", "user-1", map[string]string{"message": "hi", "persona": "nobody"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown persona, got %d", resp.Code)
	}
}

func TestTranscriptScopedToUser(t *testing.T) {
	r := setupRouter()
	resp := sendChat(r, "/chat", "user-1", map[string]string{"message": "hello"})
	var out apiclient.ChatResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions/"+out.SessionID, nil)
	req.Header.Set("X-User-Id", "user-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Session  chat.Session   `json:"session"`
		Messages []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Messages) != 2 || body.Messages[0].Sender != chat.SenderUser || body.Messages[1].Sender != chat.SenderAssistant {
		t.Fatalf("unexpected transcript %+v", body.Messages)
	}

	req = httptest.NewRequest(http.MethodGet, "/chat/sessions/"+out.SessionID, nil)
	req.Header.Set("X-User-Id", "user-2")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/chat/sessions/missing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
