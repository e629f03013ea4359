package normalizer

import "strings"

// synonymPairs is a fixed table of near-synonym single-character
// substitutions. Two tags that use opposite members of a pair are
// treated as close matches.
var synonymPairs = [][2]string{
	{"抽", "吸"},
	{"烟", "菸"},
	{"想", "思"},
	{"笑", "乐"},
	{"哭", "泣"},
	{"说", "讲"},
	{"看", "瞧"},
	{"吃", "食"},
	{"喝", "饮"},
}

// commonSuffixes are generic descriptive suffixes (scene, style,
// expression, head, face, person, ...) stripped before comparison.
// Order matters: "人" is stripped before "星人" to mirror how aliases
// were originally registered.
var commonSuffixes = []string{"场景", "风格", "表情", "头", "脸", "人", "星人", "动作"}

func stripSuffixes(s string) string {
	for _, suffix := range commonSuffixes {
		s = strings.Replace(s, suffix, "", 1)
	}
	return s
}

// similarity scores two tags in [0, 1]
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	for _, pair := range synonymPairs {
		if (strings.Contains(a, pair[0]) && strings.Contains(b, pair[1])) ||
			(strings.Contains(a, pair[1]) && strings.Contains(b, pair[0])) {
			return 0.9
		}
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.9
	}

	strippedA := stripSuffixes(a)
	strippedB := stripSuffixes(b)
	if strippedA == strippedB {
		return 0.95
	}

	return levenshteinSimilarity(strippedA, strippedB)
}

// levenshteinSimilarity returns 1 - editDistance/maxLen over runes
func levenshteinSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	maxLen := max(len(ra), len(rb))
	return 1 - float64(prev[len(rb)])/float64(maxLen)
}
