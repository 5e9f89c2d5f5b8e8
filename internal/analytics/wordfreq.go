package analytics

import (
	"sort"
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/kljensen/snowball/english"
)

// MaxWordCloudEntries caps the word frequency list of a text question
const MaxWordCloudEntries = 30

// WordCount is one word cloud bubble
type WordCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// WordFrequencies tokenizes the answers, drops English stop-words, stems what
// remains and returns the most frequent stems, ties in first-seen order.
// limit <= 0 means no cap.
func WordFrequencies(answers []string, limit int) []WordCount {
	counts := make(map[string]int)
	var order []string

	for _, answer := range answers {
		cleaned := stopwords.CleanString(strings.ToLower(answer), "en", false)
		for _, word := range strings.Fields(cleaned) {
			stem := english.Stem(word, false)
			if stem == "" {
				continue
			}
			if _, seen := counts[stem]; !seen {
				order = append(order, stem)
			}
			counts[stem]++
		}
	}

	out := make([]WordCount, len(order))
	for i, stem := range order {
		out[i] = WordCount{Name: stem, Value: counts[stem]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
