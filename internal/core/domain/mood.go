package domain

import (
	"sort"
	"strings"
)

// Mood is one of the four categories exposed to callers.
type Mood string

const (
	MoodHappy         Mood = "happy"
	MoodSad           Mood = "sad"
	MoodRelaxed       Mood = "relaxed"
	MoodContemplative Mood = "contemplative"
)

// FallbackMood is assigned to native labels missing from the table.
const FallbackMood = MoodRelaxed

// Moods lists every mood in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodRelaxed, MoodContemplative}

var moodByNativeLabel = map[string]Mood{
	"joy":        MoodHappy,
	"optimism":   MoodHappy,
	"love":       MoodHappy,
	"surprise":   MoodHappy,
	"excitement": MoodHappy,
	"amusement":  MoodHappy,
	"gratitude":  MoodHappy,
	"pride":      MoodHappy,

	"sadness":        MoodSad,
	"anger":          MoodSad,
	"fear":           MoodSad,
	"disgust":        MoodSad,
	"disappointment": MoodSad,
	"remorse":        MoodSad,
	"grief":          MoodSad,

	"calm":     MoodRelaxed,
	"relief":   MoodRelaxed,
	"neutral":  MoodRelaxed,
	"approval": MoodRelaxed,
	"caring":   MoodRelaxed,

	"curiosity":   MoodContemplative,
	"confusion":   MoodContemplative,
	"realization": MoodContemplative,
	"desire":      MoodContemplative,
	"admiration":  MoodContemplative,
}

// MoodForLabel maps a model-native label to a Mood. Matching ignores case
// and surrounding whitespace.
func MoodForLabel(label string) Mood {
	if m, ok := moodByNativeLabel[strings.ToLower(strings.TrimSpace(label))]; ok {
		return m
	}
	return FallbackMood
}

// NativeLabels returns the native labels known to the mapping table, sorted.
func NativeLabels() []string {
	labels := make([]string, 0, len(moodByNativeLabel))
	for label := range moodByNativeLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// DisplayName returns the capitalized mood name shown to users.
func (m Mood) DisplayName() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// Valid reports whether m is one of the four moods.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// LabelScore is a single (native label, score) pair produced by a model.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Dominant returns the pair with the highest score. Ties keep the earliest
// pair. ok is false when scores is empty.
func Dominant(scores []LabelScore) (top LabelScore, ok bool) {
	for i, s := range scores {
		if i == 0 || s.Score > top.Score {
			top = s
		}
	}
	return top, len(scores) > 0
}
