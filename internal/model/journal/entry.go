package journal

import "time"

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one uploaded voice journal.
type Entry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	StorageKey    string    `json:"storageKey"`
	Format        string    `json:"format"`
	SizeBytes     int64     `json:"sizeBytes"`
	Transcription string    `json:"transcription,omitempty"`
	Confidence    float64   `json:"confidence,omitempty"`
	DurationMS    int64     `json:"durationMs,omitempty"`
	Sentiment     string    `json:"sentiment,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
