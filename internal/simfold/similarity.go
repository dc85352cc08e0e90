package simfold

import "github.com/agnivade/levenshtein"

// Similarity returns the normalized Levenshtein similarity of a and b in
// [0, 1]: 1 - distance/max(len(a), len(b)), where len is measured in
// runes by the levenshtein package. Two empty strings are perfectly
// similar (1.0); any non-empty string compared against the empty string
// has similarity 0.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := runeLen(a)
	if bl := runeLen(b); bl > maxLen {
		maxLen = bl
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
