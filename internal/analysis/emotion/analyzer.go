package emotion

import (
	"strings"
)

// Label 表示识别出的情绪标签。
type Label string

const (
	Neutral Label = "neutral"
	Happy   Label = "happy"
	Calm    Label = "calm"
	Sad     Label = "sad"
	Anxious Label = "anxious"
	Fearful Label = "fearful"
	Angry   Label = "angry"
)

// Sentiment 是情绪的正负倾向，用于标注心情记录与日记。
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Tone 是陪伴回复应采用的语气。
type Tone string

const (
	Supportive  Tone = "supportive"
	Encouraging Tone = "encouraging"
	Balanced    Tone = "neutral"
)

// Decision 给出情绪识别结果以及情绪强度(1-5)。
type Decision struct {
	Emotion Label
	Scale   float32
	Score   int
}

// labelOrder 决定同分时的优先级，负面情绪优先以便给出支持性回复。
var labelOrder = []Label{Fearful, Anxious, Sad, Angry, Happy, Calm}

var keywordBuckets = map[Label][]string{
	Happy: {
		"happy", "joy", "glad", "great", "awesome", "amazing", "excited", "wonderful", "grateful",
		"thankful", "thanks", "love", "proud", "fantastic", "good day", "feeling good", "smile",
	},
	Calm: {
		"calm", "relaxed", "peaceful", "rested", "content", "at ease", "serene", "balanced",
	},
	Sad: {
		"sad", "down", "depressed", "lonely", "alone", "cry", "crying", "hopeless", "empty",
		"miserable", "heartbroken", "upset", "hurt", "low", "tired of", "worthless",
	},
	Anxious: {
		"anxious", "anxiety", "worried", "worry", "nervous", "stressed", "stress", "overwhelmed",
		"panic", "restless", "tense", "overthinking", "exam", "deadline", "pressure",
	},
	Fearful: {
		"scared", "afraid", "fear", "frightened", "terrified", "unsafe",
	},
	Angry: {
		"angry", "furious", "mad", "annoyed", "irritated", "frustrated", "rage", "hate", "fed up",
	},
}

// Analyze 根据文本关键词推断情绪。
func Analyze(text string) Decision {
	scored := scoreText(text)
	if scored.Score == 0 {
		return Decision{Emotion: Neutral, Scale: 1, Score: 0}
	}

	scale := 1 + float32(scored.Score)/3 // 每命中一个关键词强度+1
	if scale > 5 {
		scale = 5
	}
	return Decision{Emotion: scored.Emotion, Scale: scale, Score: scored.Score}
}

// SentimentOf 将情绪映射为正负倾向。
func SentimentOf(d Decision) Sentiment {
	switch d.Emotion {
	case Happy, Calm:
		return SentimentPositive
	case Sad, Anxious, Fearful, Angry:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ReplyTone 根据用户情绪选择回复语气。
func ReplyTone(d Decision) Tone {
	switch SentimentOf(d) {
	case SentimentNegative:
		return Supportive
	case SentimentPositive:
		return Encouraging
	default:
		return Balanced
	}
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Neutral}
	}

	words := tokenize(normalized)
	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if matches(normalized, words, word) {
				scores[label] += 3
			}
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 0 && scores[Happy] > 0 {
		scores[Happy] += exclamations
	}

	bestLabel := Neutral
	bestScore := 0
	for _, label := range labelOrder {
		if s := scores[label]; s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}
	return Decision{Emotion: bestLabel, Score: bestScore}
}

// matches 单词关键词按整词匹配，短语按子串匹配。
func matches(normalized string, words map[string]struct{}, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(normalized, keyword)
	}
	_, ok := words[keyword]
	return ok
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '\''
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
