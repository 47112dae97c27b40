package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/wellnessweavers/companion/internal/interaction/toast"
)

type recordedToast struct {
	message  string
	severity toast.Severity
}

type sink struct {
	mu     sync.Mutex
	toasts []recordedToast
}

func (s *sink) Notify(message string, severity toast.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, recordedToast{message, severity})
}

func TestLogMoodSendsStandardHeaders(t *testing.T) {
	var got MoodRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mood" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			t.Errorf("missing X-Requested-With header")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected authorization %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"mood_id":"m-1","points_earned":10}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithToken("secret"))
	resp, err := client.LogMood(context.Background(), MoodRequest{Mood: "great", Notes: "Feeling good today!"})
	if err != nil {
		t.Fatalf("log mood: %v", err)
	}
	if !resp.Success || resp.MoodID != "m-1" || resp.PointsEarned != 10 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got.Mood != "great" || got.Notes != "Feeling good today!" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestErrorMessageFromServerIsToasted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unknown mood"}`)
	}))
	defer srv.Close()

	s := &sink{}
	client := NewClient(srv.URL, WithNotifier(s))
	_, err := client.LogMood(context.Background(), MoodRequest{Mood: "meh"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "unknown mood" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if len(s.toasts) != 1 || s.toasts[0].severity != toast.Danger || s.toasts[0].message != "unknown mood" {
		t.Fatalf("unexpected toasts: %+v", s.toasts)
	}
}

func TestMessageFieldAndGenericFallback(t *testing.T) {
	bodies := []string{`{"message":"slow down"}`, `not json`}
	for i, body := range bodies {
		body := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, body)
		}))

		_, err := NewClient(srv.URL).SendChat(context.Background(), ChatRequest{Message: "hi"})
		srv.Close()

		want := "slow down"
		if i == 1 {
			want = GenericErrorMessage
		}
		if err == nil || err.Error() != want {
			t.Fatalf("case %d: expected %q, got %v", i, want, err)
		}
	}
}

func TestTransportFailureIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := &sink{}
	_, err := NewClient(url, WithNotifier(s)).SendChat(context.Background(), ChatRequest{Message: "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 0 {
		t.Fatalf("expected transport APIError, got %v", err)
	}
	if apiErr.Message != GenericErrorMessage {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if len(s.toasts) != 1 {
		t.Fatalf("expected one toast, got %d", len(s.toasts))
	}
}

func TestUploadVoiceJournalMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/voice-journal" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "recording.wav" || string(data) != "RIFF" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		if r.FormValue("language") != "en" {
			t.Errorf("expected language field")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"journal_id":"j-1","transcription":"hello"}`)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).UploadVoiceJournal(context.Background(), VoiceUpload{Audio: []byte("RIFF"), Language: "en"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.JournalID != "j-1" || resp.Transcription != "hello" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestMoodHistoryQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("days") != "7" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-User-Id") != "u-1" {
			t.Errorf("missing user header")
		}
		_, _ = io.WriteString(w, `{"moods":[{"id":"m-1","mood":"calm","score":7}]}`)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, WithUserID("u-1")).MoodHistory(context.Background(), 7, 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(resp.Moods) != 1 || resp.Moods[0].Mood != "calm" {
		t.Fatalf("unexpected history: %+v", resp.Moods)
	}
}
