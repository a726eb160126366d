package usecase

import "strings"

// SystemPrompt pins the assistant role for every evaluation call.
const SystemPrompt = "You are an expert Wikipedia editor who evaluates articles against Wikipedia's core content policies. You must respond with valid JSON only."

const promptIntro = "Evaluate this Wikipedia article draft against Wikipedia's three core content policies.\n\n"

const promptCriteria = `

**EVALUATION CRITERIA:**

**1. NEUTRAL POINT OF VIEW (NPOV) - Score 0-100:**
- Does it avoid stating opinions as facts?
- Are viewpoints presented proportionally to their prominence in reliable sources?
- Is promotional, biased, or editorial language avoided?
- Are controversial topics presented fairly without taking sides?
- RED FLAGS: promotional language, personal opinions stated as fact

**2. VERIFIABILITY - Score 0-100:**
- Are factual claims supported or supportable by reliable sources?
- Would readers be able to verify the information?
- Are there inline citations where needed?
- Do claims avoid being challenged or likely to be challenged without sources?
- RED FLAGS: Unsourced statistics, unattributed quotes, unverifiable claims

**3. NO ORIGINAL RESEARCH - Score 0-100:**
- Is content based on published sources rather than editor analysis?
- Are there novel theories, personal interpretations, or synthesis?
- Does it avoid reaching conclusions not stated in sources?
- RED FLAGS: Personal experiences, novel connections between ideas, unpublished analysis

**SCORING GUIDELINES:**
- 90-100: Excellent, minor improvements only
- 70-89: Good, some improvements needed
- 50-69: Significant issues, substantial revision required
- 30-49: Major problems, extensive rewriting needed
- 0-29: Fundamental violations, complete overhaul required

**IMPORTANT: Use only plain text in feedback without quotes, apostrophes, or special characters.**

Return ONLY this JSON format with no additional text:
{
  "breakdown": {
    "npov_score": [number],
    "verifiability_score": [number],
    "original_research_score": [number]
  },
  "feedback": [
    "CRITICAL: [issue without quotes]",
    "IMPROVE: [suggestion without quotes]",
    "MINOR: [enhancement without quotes]"
  ]
}

Analyze the SPECIFIC content and give appropriate scores based on actual policy violations found.
`

// BuildPrompt renders the evaluation instructions around the article text.
// The title line is omitted entirely when title is empty.
func BuildPrompt(text, title string) string {
	var b strings.Builder
	b.Grow(len(promptIntro) + len(promptCriteria) + len(text) + len(title) + 32)

	b.WriteString(promptIntro)
	if title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString("Article Text:\n")
	b.WriteString(text)
	b.WriteString(promptCriteria)

	return b.String()
}
