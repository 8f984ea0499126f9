package validation

import (
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/mapper"
	"github.com/ginjaninja78/gridcheck/internal/template"
)

// FuzzyMatch suggests an allowed value for a list miss: first through the
// column's alternative labels, then the most similar allowed value at or
// above mapper.FuzzyThreshold.
func FuzzyMatch(col *template.ColumnRule, value string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return "", false
	}

	if canonical, ok := col.AlternativeLabels[lower]; ok {
		return canonical, true
	}

	best, bestScore := "", 0.0
	for _, allowed := range col.AllowedValues {
		candidate := strings.TrimSpace(allowed)
		score := mapper.Similarity(lower, strings.ToLower(candidate))
		if score >= mapper.FuzzyThreshold && score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, best != ""
}
