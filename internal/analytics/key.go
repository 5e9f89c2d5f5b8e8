package analytics

import (
	"sort"
	"strconv"
	"strings"

	"insightform/internal/model"
)

// AggregationKey identifies "the same question" across form edits. Re-wording a
// question or changing an MCQ's option set forks the key; reordering options
// does not.
type AggregationKey struct {
	QuestionID   string
	QuestionText string

	// optionSet is the sorted option list, each option quoted, so that
	// ["a_b"] and ["a", "b"] never compare equal.
	optionSet string
	label     string
}

// NewKey builds the key for a question slot. Options only take part for MCQ.
func NewKey(questionID, questionText string, qType model.QuestionType, options []string) AggregationKey {
	k := AggregationKey{QuestionID: questionID, QuestionText: questionText}
	k.label = questionID + "_" + questionText
	if qType != model.QuestionTypeMCQ {
		return k
	}

	sorted := append([]string(nil), options...)
	sort.Strings(sorted)

	quoted := make([]string, len(sorted))
	for i, o := range sorted {
		quoted[i] = strconv.Quote(o)
	}
	k.optionSet = strings.Join(quoted, ",")
	k.label += "_" + strings.Join(sorted, "_")
	return k
}

// QuestionKey is the key of a form question
func QuestionKey(q model.Question) AggregationKey {
	return NewKey(q.ID, q.Text, q.Type, q.Options)
}

// AnswerKey is the key of an answer, taken from its snapshot
func AnswerKey(a model.Answer) AggregationKey {
	return NewKey(a.QuestionID, a.QuestionText, a.QuestionType, a.Options)
}

// String renders the key as "id_text[_opt1_opt2...]"
func (k AggregationKey) String() string {
	return k.label
}

// uniqueLabels renders keys as object labels. Distinct keys can share a label
// (an option containing "_", an id containing "_"), so repeats get "#2", "#3"...
func uniqueLabels(keys []AggregationKey) []string {
	taken := make(map[string]bool, len(keys))
	for _, k := range keys {
		taken[k.label] = true
	}

	seen := make(map[string]bool, len(keys))
	out := make([]string, len(keys))
	for i, k := range keys {
		label := k.label
		if seen[label] {
			for n := 2; ; n++ {
				candidate := label + "#" + strconv.Itoa(n)
				if !taken[candidate] {
					label = candidate
					break
				}
			}
		}
		seen[label] = true
		taken[label] = true
		out[i] = label
	}
	return out
}
