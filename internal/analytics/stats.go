package analytics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"insightform/internal/model"
)

// Context selects what the aggregate is for
type Context string

const (
	ContextAI    Context = "ai"    // Prompt payload, number answers stripped
	ContextChart Context = "chart" // Input to FormatForCharts
)

// Header holds the fields every question entry carries
type Header struct {
	QuestionText   string             `json:"questionText"`
	QuestionType   model.QuestionType `json:"questionType"`
	TotalResponses int                `json:"totalResponses"`
}

// QuestionStats is one of *McqStats, *RatingStats, *NumberStats or *TextStats.
type QuestionStats interface {
	Summary() *Header
	fold(key AggregationKey, answer string) error
	finalize()
}

// McqStats is the distribution of a single choice question over its options
type McqStats struct {
	Header
	Distribution *Distribution `json:"distribution"`
}

// RatingStats is the distribution over the fixed rating buckets
type RatingStats struct {
	Header
	Distribution *Distribution `json:"distribution"`
	AvgRating    float64       `json:"avgRating"`
}

// NumberStats summarises free numeric input
type NumberStats struct {
	Header
	Average  float64   `json:"average"`
	MinValue float64   `json:"min_value"`
	MaxValue float64   `json:"max_value"`
	Answers  []float64 `json:"answers,omitempty"`

	sum float64
}

// TextStats keeps raw free-text answers. Unknown question types land here too.
type TextStats struct {
	Header
	Answers []string `json:"answers"`
}

func newStats(text string, qType model.QuestionType, options []string) QuestionStats {
	h := Header{QuestionText: text, QuestionType: qType}
	switch qType {
	case model.QuestionTypeMCQ:
		return &McqStats{Header: h, Distribution: newDistribution(options)}
	case model.QuestionTypeRating:
		return &RatingStats{Header: h, Distribution: newDistribution(ratingBuckets)}
	case model.QuestionTypeNumber:
		return &NumberStats{
			Header:   h,
			MinValue: math.Inf(1),
			MaxValue: math.Inf(-1),
			Answers:  []float64{},
		}
	default:
		return &TextStats{Header: h, Answers: []string{}}
	}
}

func (s *McqStats) Summary() *Header { return &s.Header }

func (s *McqStats) fold(key AggregationKey, answer string) error {
	i, ok := s.Distribution.index(answer)
	if !ok {
		return &UnknownBucketError{Key: key, Bucket: answer}
	}
	s.Distribution.counts[i]++
	s.TotalResponses++
	return nil
}

func (s *McqStats) finalize() {
	s.Distribution.finalize(s.TotalResponses)
}

func (s *RatingStats) Summary() *Header { return &s.Header }

func (s *RatingStats) fold(key AggregationKey, answer string) error {
	i, ok := ratingIndex(answer)
	if !ok {
		return &UnknownBucketError{Key: key, Bucket: answer}
	}
	s.Distribution.counts[i]++
	s.TotalResponses++
	return nil
}

func (s *RatingStats) finalize() {
	s.Distribution.finalize(s.TotalResponses)
	if s.TotalResponses == 0 {
		s.AvgRating = 0
		return
	}
	var weighted float64
	for i, c := range s.Distribution.counts {
		weighted += ratingValue(i) * float64(c)
	}
	s.AvgRating = round2(weighted / float64(s.TotalResponses))
}

func (s *NumberStats) Summary() *Header { return &s.Header }

func (s *NumberStats) fold(key AggregationKey, answer string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return &MalformedAnswerError{Key: key, Value: answer, Reason: "not a number"}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return &MalformedAnswerError{Key: key, Value: answer, Reason: "number out of range"}
	}
	s.MinValue = math.Min(s.MinValue, v)
	s.MaxValue = math.Max(s.MaxValue, v)
	s.sum += v
	s.Answers = append(s.Answers, v)
	s.TotalResponses++
	return nil
}

func (s *NumberStats) finalize() {
	if s.TotalResponses == 0 {
		s.Average, s.MinValue, s.MaxValue = 0, 0, 0
		return
	}
	n := float64(s.TotalResponses)
	avg := s.sum / n
	if math.IsInf(avg, 0) {
		// the running sum overflowed; average the scaled answers instead
		avg = 0
		for _, v := range s.Answers {
			avg += v / n
		}
	}
	s.Average = round2(avg)
}

func (s *TextStats) Summary() *Header { return &s.Header }

func (s *TextStats) fold(_ AggregationKey, answer string) error {
	s.Answers = append(s.Answers, answer)
	s.TotalResponses++
	return nil
}

func (s *TextStats) finalize() {}

// Entry pairs an aggregation key with its statistics
type Entry struct {
	Key   AggregationKey
	Stats QuestionStats
}

// ProcessedData is the result of one aggregation. Entries keep form question
// order, followed by keys discovered from answers in first-seen order.
type ProcessedData struct {
	TotalFormResponses int

	// Rejected holds one *MalformedAnswerError or *UnknownBucketError per
	// answer left out of the aggregate.
	Rejected []error

	entries []Entry
	index   map[AggregationKey]int
}

func newProcessedData() *ProcessedData {
	return &ProcessedData{index: make(map[AggregationKey]int)}
}

func (p *ProcessedData) seed(key AggregationKey, text string, qType model.QuestionType, options []string) QuestionStats {
	if i, ok := p.index[key]; ok {
		return p.entries[i].Stats
	}
	stats := newStats(text, qType, options)
	p.index[key] = len(p.entries)
	p.entries = append(p.entries, Entry{Key: key, Stats: stats})
	return stats
}

// Entries returns all entries in order
func (p *ProcessedData) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Get returns the statistics for a key
func (p *ProcessedData) Get(key AggregationKey) (QuestionStats, bool) {
	i, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return p.entries[i].Stats, true
}

// Find returns every entry recorded under a question slot, one per
// wording/option variant.
func (p *ProcessedData) Find(questionID string) []Entry {
	var out []Entry
	for _, e := range p.entries {
		if e.Key.QuestionID == questionID {
			out = append(out, e)
		}
	}
	return out
}

// Warnings is the number of rejected answers
func (p *ProcessedData) Warnings() int {
	return len(p.Rejected)
}

// MarshalJSON renders one object keyed by the key labels plus totalFormResponses
func (p *ProcessedData) MarshalJSON() ([]byte, error) {
	keys := make([]AggregationKey, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	labels := uniqueLabels(keys)

	fields := make([]field, 0, len(p.entries)+1)
	for i, e := range p.entries {
		fields = append(fields, field{key: labels[i], value: e.Stats})
	}
	fields = append(fields, field{key: "totalFormResponses", value: p.TotalFormResponses})
	return marshalObject(fields)
}

var _ json.Marshaler = (*ProcessedData)(nil)
