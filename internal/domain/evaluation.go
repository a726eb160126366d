package domain

import "math"

// ArticleInput is a draft submitted for evaluation. An empty Title means no title.
type ArticleInput struct {
	Text  string
	Title string
}

// Weights holds the per-policy multipliers used to combine scores.
type Weights struct {
	NPOV             float64
	Verifiability    float64
	OriginalResearch float64
}

// Breakdown carries the per-policy scores reported to callers.
type Breakdown struct {
	NPOVScore             int `json:"npov_score"`
	VerifiabilityScore    int `json:"verifiability_score"`
	OriginalResearchScore int `json:"original_research_score"`
}

// EvaluationResult is the only output of an evaluation, genuine or degraded.
type EvaluationResult struct {
	OverallScore    int       `json:"overall_score"`
	PassesThreshold bool      `json:"passes_threshold"`
	Breakdown       Breakdown `json:"breakdown"`
	Feedback        []string  `json:"feedback"`
}

// PolicyScores are the raw per-policy scores returned by the model.
type PolicyScores struct {
	NPOV             float64
	Verifiability    float64
	OriginalResearch float64
}

// Breakdown rounds raw scores into the reported breakdown.
func (s PolicyScores) Breakdown() Breakdown {
	return Breakdown{
		NPOVScore:             roundScore(s.NPOV),
		VerifiabilityScore:    roundScore(s.Verifiability),
		OriginalResearchScore: roundScore(s.OriginalResearch),
	}
}

// Aggregate combines the scores into the overall score and pass decision.
// The overall score is rounded half away from zero; the threshold is compared
// against the unrounded weighted sum. Weights are not normalized here.
func Aggregate(scores PolicyScores, weights Weights, threshold float64) (int, bool) {
	weighted := scores.NPOV*weights.NPOV +
		scores.Verifiability*weights.Verifiability +
		scores.OriginalResearch*weights.OriginalResearch

	return roundScore(weighted), weighted >= threshold
}

// FallbackResult is the uniform degraded result carrying a single message.
func FallbackResult(message string) EvaluationResult {
	return EvaluationResult{
		OverallScore:    0,
		PassesThreshold: false,
		Breakdown:       Breakdown{},
		Feedback:        []string{message},
	}
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
