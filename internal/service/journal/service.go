package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	analysis "github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/journal"
	speechmodel "github.com/wellnessweavers/companion/internal/model/speech"
	"github.com/wellnessweavers/companion/internal/storage"
)

const playbackURLExpiry = 15 * time.Minute

var (
	ErrEmptyAudio        = errors.New("audio file is empty")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrJournalNotFound   = errors.New("journal entry not found")
	ErrStorage           = errors.New("failed to store recording")
)

var contentTypes = map[string]string{
	"wav":  "audio/wav",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"webm": "audio/webm",
}

// Transcriber is the subset of the speech service the journal needs.
type Transcriber interface {
	Enabled() bool
	TranscribeAudio(ctx context.Context, req *speechmodel.ASRRequest) (*speechmodel.ASRResponse, error)
}

// Presigner is implemented by object stores that can hand out playback URLs.
type Presigner interface {
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Upload is one recording received from a client.
type Upload struct {
	Data     []byte
	Filename string
	Language string
}

// Service stores voice journals and transcribes them.
type Service struct {
	objects     storage.ObjectStore
	entries     journal.Store
	transcriber Transcriber
	now         func() time.Time
}

// NewService wires the recording store, the entry store and an optional transcriber.
func NewService(objects storage.ObjectStore, entries journal.Store, transcriber Transcriber) *Service {
	return &Service{objects: objects, entries: entries, transcriber: transcriber, now: time.Now}
}

// TranscriptionEnabled reports whether uploads get a transcription.
func (s *Service) TranscriptionEnabled() bool {
	return s.transcriber != nil && s.transcriber.Enabled()
}

// Save stores the recording, transcribes it when possible and records the entry.
// A failed transcription still keeps the recording; the entry is marked failed.
func (s *Service) Save(ctx context.Context, userID string, up Upload) (journal.Entry, error) {
	if len(up.Data) == 0 {
		return journal.Entry{}, ErrEmptyAudio
	}
	format, ok := InferFormat(up.Filename)
	if !ok {
		return journal.Entry{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, up.Filename)
	}

	entry := journal.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Format:    format,
		SizeBytes: int64(len(up.Data)),
		Status:    journal.StatusCompleted,
		CreatedAt: s.now(),
	}
	entry.StorageKey = fmt.Sprintf("journals/%s/%s.%s", safeSegment(userID), entry.ID, format)

	if err := s.objects.Put(ctx, entry.StorageKey, bytes.NewReader(up.Data), entry.SizeBytes, contentTypes[format]); err != nil {
		log.Printf("[journal] store recording %s: %v", entry.StorageKey, err)
		return journal.Entry{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if s.TranscriptionEnabled() {
		resp, err := s.transcriber.TranscribeAudio(ctx, &speechmodel.ASRRequest{
			SessionID: entry.ID,
			AudioData: bytes.NewReader(up.Data),
			Format:    format,
			Language:  up.Language,
		})
		if err != nil {
			log.Printf("[journal] transcribe %s: %v", entry.ID, err)
			entry.Status = journal.StatusFailed
		} else {
			entry.Transcription = strings.TrimSpace(resp.Text)
			entry.Confidence = resp.Confidence
			entry.DurationMS = resp.Duration
		}
	}

	if entry.Transcription != "" {
		entry.Sentiment = string(analysis.SentimentOf(analysis.Analyze(entry.Transcription)))
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		return journal.Entry{}, fmt.Errorf("save journal entry: %w", err)
	}
	return entry, nil
}

// Get returns a user's entry and, when the store supports it, a playback URL.
func (s *Service) Get(ctx context.Context, userID, id string) (journal.Entry, string, error) {
	entry, ok := s.entries.Get(ctx, id)
	if !ok || entry.UserID != userID {
		return journal.Entry{}, "", ErrJournalNotFound
	}
	presigner, ok := s.objects.(Presigner)
	if !ok {
		return entry, "", nil
	}
	url, err := presigner.PresignGet(ctx, entry.StorageKey, playbackURLExpiry)
	if err != nil {
		log.Printf("[journal] presign %s: %v", entry.StorageKey, err)
		return entry, "", nil
	}
	return entry, url, nil
}

// InferFormat maps a filename to one of the accepted audio formats.
func InferFormat(filename string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, ok := contentTypes[ext]; ok {
		return ext, true
	}
	return "", false
}

func safeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "anonymous"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '@', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
