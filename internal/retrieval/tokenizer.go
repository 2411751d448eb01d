package retrieval

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize returns the maximal runs of word characters in the lower-cased text.
// No stemming and no stop-word removal.
func Tokenize(text string) []string {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Score counts, for every query token including repeats, how often it occurs
// among the chunk's tokens. Tokens must already be lower case.
func Score(queryTokens []string, chunkText string) int {
	if len(queryTokens) == 0 {
		return 0
	}
	return ScoreTokens(queryTokens, TermCounts(chunkText))
}

// TermCounts builds the token frequency table of a text.
func TermCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}

// ScoreTokens scores query tokens against a precomputed frequency table.
func ScoreTokens(queryTokens []string, counts map[string]int) int {
	score := 0
	for _, tok := range queryTokens {
		score += counts[tok]
	}
	return score
}
