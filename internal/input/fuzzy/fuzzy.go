// Package fuzzy scores a query string against a candidate text for the
// picker, following the teacher's input/fuzzy DefaultScorer algorithm
// (greedy subsequence match, then bonuses for consecutive runs, word
// boundaries, prefix position and overall gap) with the async/cache
// machinery dropped — the spec's picker filters a few hundred entries
// synchronously on every keystroke, not the teacher's worker-pool scale.
package fuzzy

import "unicode"

// Score attempts a case-insensitive subsequence match of query against
// text. ok is false if query is not a subsequence of text at all, in
// which case score is 0 and the picker drops the entry. Higher scores
// are better matches.
func Score(query, text string) (score int, ok bool) {
	if query == "" {
		return 0, true
	}
	if text == "" {
		return 0, false
	}

	queryRunes := []rune(lower(query))
	textRunes := []rune(lower(text))
	originalRunes := []rune(text)

	matches := make([]int, 0, len(queryRunes))
	qi := 0
	for i := 0; i < len(textRunes) && qi < len(queryRunes); i++ {
		if textRunes[i] == queryRunes[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(queryRunes) {
		return 0, false
	}

	return scoreMatch(queryRunes, originalRunes, textRunes, matches), true
}

func scoreMatch(queryRunes, originalRunes, textRunes []rune, matches []int) int {
	score := 100

	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}

	for _, idx := range matches {
		if isWordBoundary(originalRunes, idx) {
			score += 15
		}
	}

	if matches[0] == 0 {
		score += 25
	}

	if len(matches) > 1 {
		gap := matches[len(matches)-1] - matches[0] - len(matches) + 1
		if gap > 0 {
			score -= gap * 2
		}
	}

	if matches[0] > 0 {
		score -= matches[0]
	}

	if n := len(textRunes); n < 20 {
		score += 20 - n
	}

	if len(textRunes) >= len(queryRunes) {
		isPrefix := true
		for i, qr := range queryRunes {
			if textRunes[i] != qr {
				isPrefix = false
				break
			}
		}
		if isPrefix {
			score += 50
		}
	}

	if score < 1 {
		score = 1
	}
	return score
}

func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	if unicode.IsLower(prev) && unicode.IsUpper(cur) {
		return true
	}
	return false
}

func lower(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
