package journal

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/wellnessweavers/companion/internal/model/journal"
	speechmodel "github.com/wellnessweavers/companion/internal/model/speech"
)

type memObjects struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memObjects) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjects) Name() string { return "memory" }

type presigningObjects struct{ *memObjects }

func (p presigningObjects) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://files.example/" + key, nil
}

type fakeTranscriber struct {
	enabled bool
	resp    *speechmodel.ASRResponse
	err     error
	format  string
}

func (f *fakeTranscriber) Enabled() bool { return f.enabled }

func (f *fakeTranscriber) TranscribeAudio(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error) {
	f.format = req.Format
	return f.resp, f.err
}

func TestSaveStoresAndTranscribes(t *testing.T) {
	objects := newMemObjects()
	entries := journal.NewMemoryStore()
	tr := &fakeTranscriber{enabled: true, resp: &speechmodel.ASRResponse{Text: " I feel happy and grateful today ", Confidence: 0.92, Duration: 3100}}
	svc := NewService(objects, entries, tr)

	entry, err := svc.Save(context.Background(), "user-1", Upload{Data: []byte("RIFFdata"), Filename: "recording.wav"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if entry.Status != journal.StatusCompleted || entry.Transcription != "I feel happy and grateful today" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Sentiment != "positive" {
		t.Fatalf("expected positive sentiment, got %q", entry.Sentiment)
	}
	if !strings.HasPrefix(entry.StorageKey, "journals/user-1/") || !strings.HasSuffix(entry.StorageKey, ".wav") {
		t.Fatalf("unexpected storage key %q", entry.StorageKey)
	}
	if string(objects.objects[entry.StorageKey]) != "RIFFdata" || objects.types[entry.StorageKey] != "audio/wav" {
		t.Fatalf("recording was not stored as expected")
	}
	if tr.format != "wav" {
		t.Fatalf("transcriber should receive the format, got %q", tr.format)
	}
	if _, ok := entries.Get(context.Background(), entry.ID); !ok {
		t.Fatalf("entry should be saved")
	}
}

func TestSaveKeepsRecordingWhenTranscriptionFails(t *testing.T) {
	objects := newMemObjects()
	svc := NewService(objects, journal.NewMemoryStore(), &fakeTranscriber{enabled: true, err: errors.New("provider down")})

	entry, err := svc.Save(context.Background(), "user-1", Upload{Data: []byte{1}, Filename: "a.webm"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if entry.Status != journal.StatusFailed || entry.Transcription != "" {
		t.Fatalf("expected failed entry without transcription, got %+v", entry)
	}
	if len(objects.objects) != 1 {
		t.Fatalf("recording should still be stored")
	}
}

func TestSaveWithoutTranscriber(t *testing.T) {
	svc := NewService(newMemObjects(), journal.NewMemoryStore(), nil)
	entry, err := svc.Save(context.Background(), "", Upload{Data: []byte{1}, Filename: "a.mp3"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if entry.Status != journal.StatusCompleted || entry.Sentiment != "" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !strings.HasPrefix(entry.StorageKey, "journals/anonymous/") {
		t.Fatalf("unexpected key %q", entry.StorageKey)
	}
}

func TestSaveRejectsBadUploads(t *testing.T) {
	svc := NewService(newMemObjects(), journal.NewMemoryStore(), nil)
	if _, err := svc.Save(context.Background(), "u", Upload{Filename: "a.wav"}); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected ErrEmptyAudio, got %v", err)
	}
	if _, err := svc.Save(context.Background(), "u", Upload{Data: []byte{1}, Filename: "notes.txt"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	failing := newMemObjects()
	failing.err = errors.New("disk full")
	svc = NewService(failing, journal.NewMemoryStore(), nil)
	if _, err := svc.Save(context.Background(), "u", Upload{Data: []byte{1}, Filename: "a.wav"}); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestGetScopesToUserAndPresigns(t *testing.T) {
	objects := presigningObjects{newMemObjects()}
	svc := NewService(objects, journal.NewMemoryStore(), nil)
	entry, err := svc.Save(context.Background(), "user-1", Upload{Data: []byte{1}, Filename: "a.m4a"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, url, err := svc.Get(context.Background(), "user-1", entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != entry.ID || url != "https://files.example/"+entry.StorageKey {
		t.Fatalf("unexpected result %+v %q", got, url)
	}

	if _, _, err := svc.Get(context.Background(), "user-2", entry.ID); !errors.Is(err, ErrJournalNotFound) {
		t.Fatalf("other users must not see the entry, got %v", err)
	}
}

func TestInferFormat(t *testing.T) {
	cases := map[string]string{"a.WAV": "wav", "b.mp3": "mp3", "c.m4a": "m4a", "d.webm": "webm"}
	for name, want := range cases {
		if got, ok := InferFormat(name); !ok || got != want {
			t.Fatalf("%s: expected %s, got %s", name, want, got)
		}
	}
	if _, ok := InferFormat("e.ogg"); ok {
		t.Fatalf("ogg is not accepted")
	}
}
