package analytics

import (
	"math"
	"strconv"
)

// targetBins is how many histogram bins a number question aims for
const targetBins = 10

// Chart is one of *McqStats, *RatingStats, *HistogramChart or WordCloud.
type Chart interface {
	chart()
}

func (*McqStats) chart()    {}
func (*RatingStats) chart() {}

// WordCloud is the chart form of a text question, serialized as a plain array
type WordCloud []WordCount

func (WordCloud) chart() {}

// HistogramChart is the chart form of a number question
type HistogramChart struct {
	Header
	Average   float64  `json:"average"`
	MinValue  float64  `json:"min_value"`
	MaxValue  float64  `json:"max_value"`
	Bins      []string `json:"bins"`
	BinCounts []int    `json:"binCounts"`
}

func (*HistogramChart) chart() {}

// ChartEntry pairs an aggregation key with its chart
type ChartEntry struct {
	Key   AggregationKey
	Chart Chart
}

// ChartReadyData is the payload the dashboard renders. It carries no
// totalFormResponses.
type ChartReadyData struct {
	entries []ChartEntry
	index   map[AggregationKey]int
}

// Entries returns the charts in aggregation order
func (c *ChartReadyData) Entries() []ChartEntry {
	return append([]ChartEntry(nil), c.entries...)
}

// Get returns the chart for a key
func (c *ChartReadyData) Get(key AggregationKey) (Chart, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.entries[i].Chart, true
}

func (c *ChartReadyData) Len() int {
	return len(c.entries)
}

func (c *ChartReadyData) MarshalJSON() ([]byte, error) {
	keys := make([]AggregationKey, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	labels := uniqueLabels(keys)

	fields := make([]field, len(c.entries))
	for i, e := range c.entries {
		fields[i] = field{key: labels[i], value: e.Chart}
	}
	return marshalObject(fields)
}

// FormatForCharts turns aggregated statistics into chart shapes. Text becomes a
// word cloud, numbers become a histogram, mcq and rating pass through.
func FormatForCharts(p *ProcessedData) *ChartReadyData {
	out := &ChartReadyData{index: make(map[AggregationKey]int, len(p.entries))}
	for _, e := range p.entries {
		var c Chart
		switch s := e.Stats.(type) {
		case *McqStats:
			c = s
		case *RatingStats:
			c = s
		case *NumberStats:
			bins, counts := Histogram(s.Answers, s.MinValue, s.MaxValue)
			c = &HistogramChart{
				Header:    s.Header,
				Average:   s.Average,
				MinValue:  s.MinValue,
				MaxValue:  s.MaxValue,
				Bins:      bins,
				BinCounts: counts,
			}
		case *TextStats:
			c = WordCloud(WordFrequencies(s.Answers, MaxWordCloudEntries))
		}
		out.index[e.Key] = len(out.entries)
		out.entries = append(out.entries, ChartEntry{Key: e.Key, Chart: c})
	}
	return out
}

// Histogram bins values between lo and hi into at most 10 bins of integer
// width, at least 1. Labels read "<start> - <end>" with the last end clamped
// to hi. Empty input gives empty, non-nil slices.
func Histogram(values []float64, lo, hi float64) ([]string, []int) {
	if len(values) == 0 {
		return []string{}, []int{}
	}

	// offset is the distance from lo in bin widths. When hi - lo overflows,
	// both bounds are scaled down before subtracting.
	span := hi - lo
	width := math.Max(1, math.Ceil(span/targetBins))
	offset := func(v float64) float64 { return (v - lo) / width }
	if math.IsInf(span, 0) {
		width = math.Ceil(hi/targetBins - lo/targetBins)
		offset = func(v float64) float64 { return v/width - lo/width }
	}

	n := 1
	if f := math.Ceil(offset(hi)); f > 1 {
		n = int(math.Min(f, targetBins))
	}

	bins := make([]string, n)
	for i := range bins {
		start := lo + float64(i)*width
		end := start + width
		if i == n-1 {
			end = hi
		}
		bins[i] = formatBound(start) + " - " + formatBound(end)
	}

	counts := make([]int, n)
	for _, v := range values {
		f := math.Floor(offset(v))
		i := 0
		switch {
		case v == hi || f >= float64(n):
			i = n - 1
		case f > 0:
			i = int(f)
		}
		counts[i]++
	}
	return bins, counts
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
