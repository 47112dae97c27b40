package apiclient

import "time"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token issued by the auth endpoint.
type LoginResponse struct {
	Token string `json:"token"`
}

// MoodRequest is the body of POST /api/mood.
type MoodRequest struct {
	Mood        string   `json:"mood"`
	Notes       string   `json:"notes,omitempty"`
	Intensity   *int     `json:"intensity,omitempty"`
	EnergyLevel *int     `json:"energy_level,omitempty"`
	StressLevel *int     `json:"stress_level,omitempty"`
	Activities  []string `json:"activities,omitempty"`
}

// MoodResponse acknowledges a logged mood.
type MoodResponse struct {
	Success      bool   `json:"success"`
	MoodID       string `json:"mood_id"`
	PointsEarned int    `json:"points_earned"`
	Sentiment    string `json:"sentiment,omitempty"`
}

// MoodEntry is one item of the mood history.
type MoodEntry struct {
	ID          string    `json:"id"`
	Mood        string    `json:"mood"`
	Score       int       `json:"score"`
	Notes       string    `json:"notes,omitempty"`
	Intensity   *int      `json:"intensity,omitempty"`
	EnergyLevel *int      `json:"energy_level,omitempty"`
	StressLevel *int      `json:"stress_level,omitempty"`
	Activities  []string  `json:"activities,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MoodHistoryResponse is returned by GET /api/moods.
type MoodHistoryResponse struct {
	Moods []MoodEntry `json:"moods"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Persona   string `json:"persona,omitempty"`
}

// ChatResponse carries the companion's reply.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
	Emotion   string `json:"emotion,omitempty"`
}

// VoiceUpload is a recorded journal entry ready for upload.
type VoiceUpload struct {
	Audio    []byte
	Filename string
	Language string
}

// VoiceJournalResponse is returned by POST /api/voice-journal.
type VoiceJournalResponse struct {
	Success       bool    `json:"success"`
	JournalID     string  `json:"journal_id"`
	Transcription string  `json:"transcription,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	Sentiment     string  `json:"sentiment,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// ErrorResponse is the JSON error body every endpoint uses.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
