package mood

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wellnessweavers/companion/internal/model/mood"
)

func intPtr(v int) *int { return &v }

func TestLogScoresAndTagsEntry(t *testing.T) {
	svc := NewService(mood.NewMemoryStore())

	entry, err := svc.Log(context.Background(), "u-1", LogInput{
		Mood:       " Great ",
		Notes:      "Feeling good today!",
		Intensity:  intPtr(8),
		Activities: []string{"Walk", "walk", " ", "reading"},
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if entry.Mood != "great" || entry.Score != 9 {
		t.Fatalf("unexpected mood/score %q %d", entry.Mood, entry.Score)
	}
	if entry.PointsEarned != mood.PointsPerEntry {
		t.Fatalf("expected %d points, got %d", mood.PointsPerEntry, entry.PointsEarned)
	}
	if entry.Sentiment != "positive" {
		t.Fatalf("expected positive sentiment, got %q", entry.Sentiment)
	}
	if len(entry.Activities) != 2 || entry.Activities[0] != "walk" {
		t.Fatalf("unexpected activities %v", entry.Activities)
	}
}

func TestLogSentimentFromScoreWithoutNotes(t *testing.T) {
	svc := NewService(mood.NewMemoryStore())
	entry, err := svc.Log(context.Background(), "u-1", LogInput{Mood: "bad"})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if entry.Sentiment != "negative" {
		t.Fatalf("expected negative sentiment, got %q", entry.Sentiment)
	}
}

func TestLogRejectsInvalidInput(t *testing.T) {
	svc := NewService(mood.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Log(ctx, "u-1", LogInput{}); !errors.Is(err, ErrMoodRequired) {
		t.Fatalf("expected ErrMoodRequired, got %v", err)
	}
	if _, err := svc.Log(ctx, "u-1", LogInput{Mood: "ecstatic"}); !errors.Is(err, ErrUnknownMood) {
		t.Fatalf("expected ErrUnknownMood, got %v", err)
	}
	if _, err := svc.Log(ctx, "u-1", LogInput{Mood: "okay", StressLevel: intPtr(11)}); !errors.Is(err, ErrLevelRange) {
		t.Fatalf("expected ErrLevelRange, got %v", err)
	}
}

func TestHistoryFiltersAndOrders(t *testing.T) {
	store := mood.NewMemoryStore()
	svc := NewService(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, m := range []string{"low", "okay", "good"} {
		svc.now = func() time.Time { return base.AddDate(0, 0, i*10) }
		if _, err := svc.Log(context.Background(), "u-1", LogInput{Mood: m}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	if _, err := svc.Log(context.Background(), "u-2", LogInput{Mood: "great"}); err != nil {
		t.Fatalf("log: %v", err)
	}

	svc.now = func() time.Time { return base.AddDate(0, 0, 25) }
	entries, err := svc.History(context.Background(), "u-1", 20, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in window, got %d", len(entries))
	}
	if entries[0].Mood != "good" || entries[1].Mood != "okay" {
		t.Fatalf("expected newest first, got %s then %s", entries[0].Mood, entries[1].Mood)
	}

	limited, _ := svc.History(context.Background(), "u-1", 60, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}
