// Package moodprompt holds the prompt and reply format shared by the chat
// model backends that score lyrics against the native emotion labels.
package moodprompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ewilliams-labs/encore/internal/core/domain"
)

// System returns the system prompt listing every label the model may use.
func System() string {
	return "You are an emotion classifier for song lyrics.\n\n" +
		"Rules:\n" +
		"Labels: score the lyrics against exactly these labels: " + strings.Join(domain.NativeLabels(), ", ") + ".\n" +
		"Scores: each score is a probability between 0.0 and 1.0; the scores should sum to about 1.0.\n" +
		"Output: return ONLY a JSON object of the form {\"scores\": {\"<label>\": <score>}}. No conversational text."
}

type reply struct {
	Scores map[string]float64 `json:"scores"`
}

// ParseScores decodes a model reply into label scores, highest first.
func ParseScores(content string) ([]domain.LabelScore, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("moodprompt: empty reply")
	}
	// Some models wrap JSON in a markdown fence despite the instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var r reply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, fmt.Errorf("moodprompt: decode reply: %w", err)
	}

	scores := make([]domain.LabelScore, 0, len(r.Scores))
	for label, score := range r.Scores {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		scores = append(scores, domain.LabelScore{Label: label, Score: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Label < scores[j].Label
	})
	return scores, nil
}
