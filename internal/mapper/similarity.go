package mapper

import "github.com/agnivade/levenshtein"

// Similarity is 1 - distance / max(len(a), len(b)), with the edit distance
// and lengths counted in runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
