// Package simfold implements the case-folding and similarity primitives
// shared by the matcher and query evaluation engines (C8): ASCII- and
// Unicode-aware case folding for the case_ignore option, and normalized
// Levenshtein similarity for the =* operator.
package simfold

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Fold returns s case-folded for comparison under case_ignore (§4.4,
// §9). Valid UTF-8 is folded with golang.org/x/text/cases, which is
// Unicode-aware (handles German sharp s, Turkish dotless i neutrally,
// etc.) rather than ASCII-only. Invalid UTF-8 runs are first replaced by
// the replacement rune U+FFFD (the "lossy UTF-8 view" policy) and the
// result is folded, so two strings that differ only in their invalid
// bytes fold to the same value.
func Fold(s string) string {
	if utf8.ValidString(s) {
		return foldCaser.String(s)
	}
	return foldCaser.String(strings.ToValidUTF8(s, string(utf8.RuneError)))
}

// FoldIf applies Fold only when caseIgnore is set; otherwise it returns s
// unchanged. Centralizing the branch here keeps every call site in the
// matcher/query engines symmetric: fold both operands or neither.
func FoldIf(s string, caseIgnore bool) string {
	if !caseIgnore {
		return s
	}
	return Fold(s)
}

