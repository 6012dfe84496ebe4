package llm

import (
	"fmt"
	"strings"
)

type PromptParams struct {
	Location     string
	Keywords     string
	Radius       string
	Limit        int
	Language     string
	ExcludeNames []string
	Context      string
}

var languageLabels = map[string]string{
	"zh-TW": "Traditional Chinese (繁體中文)",
	"en":    "English",
	"ja":    "Japanese (日本語)",
}

// TargetLanguage maps a locale code to the natural-language label
// injected into the prompt. Unknown codes fall back to zh-TW.
func TargetLanguage(language string) string {
	if label, ok := languageLabels[language]; ok {
		return label
	}
	return languageLabels["zh-TW"]
}

// DefaultKeywords substitutes a per-language default when the user
// left the keyword field blank.
func DefaultKeywords(keywords, language string) string {
	if strings.TrimSpace(keywords) != "" {
		return keywords
	}
	if language == "en" {
		return "good food, high rating"
	}
	return "美食, 高評分"
}

// BuildSearchPrompt constructs the search instruction. The radius and
// sort-order constraints are verbal only; results are not re-checked
// afterwards.
func BuildSearchPrompt(p PromptParams) string {
	keywords := DefaultKeywords(p.Keywords, p.Language)

	excludeInstruction := ""
	if len(p.ExcludeNames) > 0 {
		excludeInstruction = fmt.Sprintf(
			"DO NOT include these restaurants: %s.",
			strings.Join(p.ExcludeNames, ", "),
		)
	}

	radiusConstraint := fmt.Sprintf(
		"Location: Must be strictly within %s of the center point.", p.Radius)
	if p.Radius == "unlimited" {
		radiusConstraint = "Location: Prioritize nearby but allow wider search if needed."
	}

	contextBlock := ""
	if p.Context != "" {
		contextBlock = fmt.Sprintf("\nUser Personal Preferences:\n%s\n", p.Context)
	}

	return fmt.Sprintf(`Task: Find exactly %d real, existing restaurants near "%s" matching "%s".
%s%s
Constraints:
1. Language: Output ONLY in %s.
2. Sort Order: Sort strictly by Recommendation Strength (Highest Rating + Best Keyword Match) DESCENDING.
3. %s
4. Ensure coordinates (lat/lng) are accurate for the specific restaurant.
`,
		p.Limit,
		p.Location,
		keywords,
		excludeInstruction,
		contextBlock,
		TargetLanguage(p.Language),
		radiusConstraint,
	)
}
