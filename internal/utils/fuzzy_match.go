package utils

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityRatio returns the Ratcliff/Obershelp similarity of two strings in
// [0, 1], compared case-insensitively character by character.
// 1.0 means identical; two empty strings are identical.
//
// SequenceMatcher's greedy block search can score (a, b) and (b, a)
// differently, so the larger of the two is returned.
func SimilarityRatio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}

	ca, cb := splitChars(a), splitChars(b)
	forward := difflib.NewMatcher(ca, cb).Ratio()
	backward := difflib.NewMatcher(cb, ca).Ratio()
	return max(forward, backward)
}

// IsNearDuplicate reports whether name is more similar than threshold to any
// of the already accepted names.
func IsNearDuplicate(name string, accepted []string, threshold float64) bool {
	for _, existing := range accepted {
		if SimilarityRatio(name, existing) > threshold {
			return true
		}
	}
	return false
}

// ContainsAny reports whether s contains any of the terms, case-insensitively.
// Terms are expected to be lower case already.
func ContainsAny(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, term := range terms {
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func splitChars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
