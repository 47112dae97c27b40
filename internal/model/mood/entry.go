package mood

import (
	"strings"
	"time"
)

// PointsPerEntry is awarded for every logged mood.
const PointsPerEntry = 10

// scores maps the selectable moods to a 1-10 wellbeing score.
var scores = map[string]int{
	"great":   9,
	"good":    7,
	"calm":    7,
	"okay":    5,
	"anxious": 4,
	"low":     3,
	"angry":   3,
	"bad":     2,
}

// Entry is one logged mood.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Mood         string    `json:"mood"`
	Score        int       `json:"score"`
	Notes        string    `json:"notes,omitempty"`
	Intensity    *int      `json:"intensity,omitempty"`
	EnergyLevel  *int      `json:"energyLevel,omitempty"`
	StressLevel  *int      `json:"stressLevel,omitempty"`
	Activities   []string  `json:"activities,omitempty"`
	Sentiment    string    `json:"sentiment,omitempty"`
	PointsEarned int       `json:"pointsEarned"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Normalize lowercases and trims a mood identifier.
func Normalize(mood string) string {
	return strings.ToLower(strings.TrimSpace(mood))
}

// ScoreFor returns the score of a known mood.
func ScoreFor(mood string) (int, bool) {
	s, ok := scores[Normalize(mood)]
	return s, ok
}

// Known lists the accepted mood identifiers, best first.
func Known() []string {
	return []string{"great", "good", "calm", "okay", "anxious", "low", "angry", "bad"}
}
