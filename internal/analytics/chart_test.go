package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightform/internal/model"
)

func TestHistogram(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		lo, hi    float64
		bins      []string
		binCounts []int
	}{
		{
			name:      "max lands in last bin",
			values:    []float64{1, 5, 10},
			lo:        1,
			hi:        10,
			bins:      []string{"1 - 2", "2 - 3", "3 - 4", "4 - 5", "5 - 6", "6 - 7", "7 - 8", "8 - 9", "9 - 10"},
			binCounts: []int{1, 0, 0, 0, 1, 0, 0, 0, 1},
		},
		{
			name:      "wide range rounds width up",
			values:    []float64{0, 12, 25},
			lo:        0,
			hi:        25,
			bins:      []string{"0 - 3", "3 - 6", "6 - 9", "9 - 12", "12 - 15", "15 - 18", "18 - 21", "21 - 24", "24 - 25"},
			binCounts: []int{1, 0, 0, 0, 1, 0, 0, 0, 1},
		},
		{
			name:      "single value",
			values:    []float64{7, 7},
			lo:        7,
			hi:        7,
			bins:      []string{"7 - 7"},
			binCounts: []int{2},
		},
		{
			name:      "sub-unit range",
			values:    []float64{0, 0.5},
			lo:        0,
			hi:        0.5,
			bins:      []string{"0 - 0.5"},
			binCounts: []int{2},
		},
		{
			name:      "empty",
			bins:      []string{},
			binCounts: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bins, counts := Histogram(tt.values, tt.lo, tt.hi)
			assert.Equal(t, tt.bins, bins)
			assert.Equal(t, tt.binCounts, counts)
		})
	}
}

func TestHistogramHugeSpan(t *testing.T) {
	bins, counts := Histogram([]float64{-1e308, 0, 1e308}, -1e308, 1e308)

	require.Len(t, bins, targetBins)
	require.Len(t, counts, targetBins)
	assert.Equal(t, 1, counts[0])
	assert.Equal(t, 1, counts[targetBins-1])
	assert.True(t, strings.HasSuffix(bins[targetBins-1], " - "+formatBound(1e308)))

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 3, total)
}

func TestFormatForChartsHugeNumbers(t *testing.T) {
	p := Aggregate([]model.Question{ageQ}, responsesFor(ageQ, "-1e308", "1e308"), ContextChart)

	var charts *ChartReadyData
	require.NotPanics(t, func() { charts = FormatForCharts(p) })

	c, ok := charts.Get(QuestionKey(ageQ))
	require.True(t, ok)
	h := c.(*HistogramChart)
	assert.Len(t, h.Bins, len(h.BinCounts))

	_, err := json.Marshal(charts)
	require.NoError(t, err)
}

func TestWordFrequencies(t *testing.T) {
	t.Run("shared stem ranks first", func(t *testing.T) {
		words := WordFrequencies([]string{"good product", "good service"}, MaxWordCloudEntries)

		require.NotEmpty(t, words)
		assert.Equal(t, WordCount{Name: "good", Value: 2}, words[0])
		for _, w := range words[1:] {
			assert.Less(t, w.Value, 2)
		}
	})

	t.Run("stems and drops stop-words", func(t *testing.T) {
		words := WordFrequencies([]string{"The delivery was running late", "They are running the show"}, 0)

		names := make([]string, len(words))
		for i, w := range words {
			names[i] = w.Name
		}
		assert.Equal(t, "run", words[0].Name)
		assert.Equal(t, 2, words[0].Value)
		assert.NotContains(t, names, "the")
	})

	t.Run("capped", func(t *testing.T) {
		consonants := "bcdfgkmnprt"
		var vocab []string
		for i := 0; i < 40; i++ {
			vocab = append(vocab, fmt.Sprintf("zorp%c%c", consonants[i/len(consonants)], consonants[i%len(consonants)]))
		}

		words := WordFrequencies([]string{strings.Join(vocab, " ")}, MaxWordCloudEntries)
		assert.Len(t, words, MaxWordCloudEntries)
	})

	t.Run("no answers", func(t *testing.T) {
		assert.Empty(t, WordFrequencies(nil, MaxWordCloudEntries))
	})
}

func TestFormatForCharts(t *testing.T) {
	responses := []model.Response{
		{Answers: []model.Answer{answerTo(colorQ, "A"), answerTo(ageQ, "1"), answerTo(notesQ, "good product")}},
		{Answers: []model.Answer{answerTo(colorQ, "B"), answerTo(ageQ, "5"), answerTo(notesQ, "good service")}},
		{Answers: []model.Answer{answerTo(colorQ, "A"), answerTo(ageQ, "10"), answerTo(notesQ, "")}},
	}
	p := Aggregate([]model.Question{colorQ, ageQ, notesQ}, responses, ContextChart)
	charts := FormatForCharts(p)

	require.Equal(t, 3, charts.Len())

	c, ok := charts.Get(QuestionKey(colorQ))
	require.True(t, ok)
	mcq := c.(*McqStats)
	assert.Equal(t, 66.67, mcq.Distribution.Percentage("A"))

	c, _ = charts.Get(QuestionKey(ageQ))
	h := c.(*HistogramChart)
	assert.Equal(t, 3, h.TotalResponses)
	assert.Equal(t, 5.33, h.Average)
	assert.Len(t, h.Bins, 9)
	assert.Equal(t, "9 - 10", h.Bins[8])
	assert.Equal(t, 1, h.BinCounts[8])

	c, _ = charts.Get(QuestionKey(notesQ))
	cloud := c.(WordCloud)
	assert.Equal(t, "good", cloud[0].Name)

	raw, err := json.Marshal(charts)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "totalFormResponses")

	var cloudJSON []WordCount
	require.NoError(t, json.Unmarshal(decoded[QuestionKey(notesQ).String()], &cloudJSON))
	assert.Equal(t, []WordCount(cloud), cloudJSON)

	var hist map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded[QuestionKey(ageQ).String()], &hist))
	assert.NotContains(t, hist, "answers")
	assert.Contains(t, hist, "binCounts")
}

func TestFormatForChartsUnknownType(t *testing.T) {
	odd := model.Question{ID: "q9", Text: "Pick a date", Type: model.QuestionType("date")}
	p := Aggregate([]model.Question{odd}, responsesFor(odd, "monday morning"), ContextChart)

	stats, _ := p.Get(QuestionKey(odd))
	assert.Equal(t, model.QuestionType("date"), stats.Summary().QuestionType)

	c, _ := FormatForCharts(p).Get(QuestionKey(odd))
	assert.IsType(t, WordCloud{}, c)
}
