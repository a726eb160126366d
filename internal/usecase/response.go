package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"ArticleEvaluator/internal/domain"
)

const (
	npovField             = "npov_score"
	verifiabilityField    = "verifiability_score"
	originalResearchField = "original_research_score"
)

var severityPrefixes = []string{"CRITICAL", "IMPROVE", "MINOR"}

// modelEvaluation is a response that passed the structural checks.
type modelEvaluation struct {
	Scores domain.PolicyScores
	// Feedback is nil when the model did not supply any.
	Feedback []string
}

// ValidateResponse reports whether a decoded model response satisfies the
// evaluation contract. Absent feedback is valid.
func ValidateResponse(parsed any) bool {
	_, err := checkResponse(parsed)
	return err == nil
}

// parseResponse decodes the model text, tolerating a surrounding markdown fence.
func parseResponse(raw string) (any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func checkResponse(parsed any) (modelEvaluation, error) {
	var out modelEvaluation

	obj, ok := parsed.(map[string]any)
	if !ok {
		return out, errors.New("response is not a JSON object")
	}

	breakdown, ok := obj["breakdown"].(map[string]any)
	if !ok {
		return out, errors.New("breakdown is missing or not an object")
	}

	var err error
	if out.Scores.NPOV, err = scoreField(breakdown, npovField); err != nil {
		return out, err
	}
	if out.Scores.Verifiability, err = scoreField(breakdown, verifiabilityField); err != nil {
		return out, err
	}
	if out.Scores.OriginalResearch, err = scoreField(breakdown, originalResearchField); err != nil {
		return out, err
	}

	raw, present := obj["feedback"]
	if !present {
		return out, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return out, fmt.Errorf("feedback is %T, want array", raw)
	}

	out.Feedback = make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return out, fmt.Errorf("feedback[%d] is %T, want string", i, item)
		}
		out.Feedback = append(out.Feedback, s)
	}

	return out, nil
}

func scoreField(breakdown map[string]any, key string) (float64, error) {
	v, ok := breakdown[key]
	if !ok {
		return 0, fmt.Errorf("%s is missing", key)
	}

	score, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%s is %T, want number", key, v)
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return 0, fmt.Errorf("%s=%v is outside [0,100]", key, score)
	}

	return score, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// untaggedFeedback counts entries without a recognized severity prefix.
func untaggedFeedback(feedback []string) int {
	var count int
	for _, entry := range feedback {
		if !hasSeverityPrefix(entry) {
			count++
		}
	}
	return count
}

func hasSeverityPrefix(entry string) bool {
	entry = strings.TrimSpace(entry)
	for _, prefix := range severityPrefixes {
		if strings.HasPrefix(entry, prefix) {
			return true
		}
	}
	return false
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite
// the JSON response format.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
