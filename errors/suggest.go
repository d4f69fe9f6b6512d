package errors

import (
	"slices"
	"strings"
)

// MaxSuggestions is the maximum number of suggestions returned.
const MaxSuggestions = 3

// Suggestion is a candidate correction and its edit distance from the
// mistyped word.
type Suggestion struct {
	Value    string
	Distance int
}

// SuggestSimilar returns the candidates closest to target, nearest first.
// The allowed distance grows with the length of target: 1 for up to three
// characters, 2 for up to five, 3 beyond that.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	target = strings.ToLower(target)
	if target == "" {
		return nil
	}
	threshold := 3
	switch {
	case len(target) <= 3:
		threshold = 1
	case len(target) <= 5:
		threshold = 2
	}
	var suggestions []Suggestion
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if lower == "" || lower == target {
			continue
		}
		if d := editDistance(target, lower); d <= threshold {
			suggestions = append(suggestions, Suggestion{Value: candidate, Distance: d})
		}
	}
	slices.SortFunc(suggestions, func(a, b Suggestion) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return strings.Compare(a.Value, b.Value)
	})
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}

// FormatSuggestions renders suggestions as a question, or "" if there are
// none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean " + quote(suggestions[0].Value) + "?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = quote(s.Value)
	}
	return "did you mean one of " + strings.Join(quoted, ", ") + "?"
}

func quote(s string) string {
	return `"` + s + `"`
}

// editDistance is the Levenshtein distance between a and b, computed over
// runes with a single rolling row.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		diag := row[0]
		row[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			next := min(row[i]+1, row[i-1]+1, diag+cost)
			diag = row[i]
			row[i] = next
		}
	}
	return row[len(ra)]
}
