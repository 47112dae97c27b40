package mood

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	analysis "github.com/wellnessweavers/companion/internal/analysis/emotion"
	"github.com/wellnessweavers/companion/internal/model/mood"
)

const (
	DefaultHistoryDays  = 30
	DefaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxNotesLength      = 2000
)

var (
	ErrMoodRequired = errors.New("mood is required")
	ErrUnknownMood  = errors.New("unknown mood")
	ErrLevelRange   = errors.New("levels must be between 1 and 10")
	ErrNotesTooLong = errors.New("notes are too long")
)

// LogInput is what a user submits for one mood entry.
type LogInput struct {
	Mood        string
	Notes       string
	Intensity   *int
	EnergyLevel *int
	StressLevel *int
	Activities  []string
}

// Service records and lists mood entries.
type Service struct {
	store mood.Store
	now   func() time.Time
}

// NewService creates a mood service on top of store.
func NewService(store mood.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Log validates input, tags the notes with a sentiment and stores the entry.
func (s *Service) Log(ctx context.Context, userID string, in LogInput) (mood.Entry, error) {
	id := mood.Normalize(in.Mood)
	if id == "" {
		return mood.Entry{}, ErrMoodRequired
	}
	score, ok := mood.ScoreFor(id)
	if !ok {
		return mood.Entry{}, fmt.Errorf("%w: %q", ErrUnknownMood, in.Mood)
	}
	for _, level := range []*int{in.Intensity, in.EnergyLevel, in.StressLevel} {
		if level != nil && (*level < 1 || *level > 10) {
			return mood.Entry{}, ErrLevelRange
		}
	}

	notes := strings.TrimSpace(in.Notes)
	if len([]rune(notes)) > maxNotesLength {
		return mood.Entry{}, ErrNotesTooLong
	}

	sentiment := sentimentFromScore(score)
	if notes != "" {
		if d := analysis.Analyze(notes); d.Score > 0 {
			sentiment = analysis.SentimentOf(d)
		}
	}

	entry := mood.Entry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Mood:         id,
		Score:        score,
		Notes:        notes,
		Intensity:    in.Intensity,
		EnergyLevel:  in.EnergyLevel,
		StressLevel:  in.StressLevel,
		Activities:   cleanActivities(in.Activities),
		Sentiment:    string(sentiment),
		PointsEarned: mood.PointsPerEntry,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Save(ctx, entry); err != nil {
		return mood.Entry{}, fmt.Errorf("save mood: %w", err)
	}
	return entry, nil
}

// History lists the user's entries of the last days, newest first.
func (s *Service) History(ctx context.Context, userID string, days, limit int) ([]mood.Entry, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	return s.store.ListByUser(ctx, userID, since, limit)
}

func sentimentFromScore(score int) analysis.Sentiment {
	switch {
	case score >= 7:
		return analysis.SentimentPositive
	case score <= 4:
		return analysis.SentimentNegative
	default:
		return analysis.SentimentNeutral
	}
}

func cleanActivities(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
