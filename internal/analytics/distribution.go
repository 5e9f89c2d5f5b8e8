package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ratingBuckets are the fixed rating values, 0.5 to 5 in half steps
var ratingBuckets = []string{"0.5", "1", "1.5", "2", "2.5", "3", "3.5", "4", "4.5", "5"}

// RatingBuckets returns the rating bucket labels in ascending order
func RatingBuckets() []string {
	return append([]string(nil), ratingBuckets...)
}

// ratingIndex maps an answer like "3", "3.0" or "4.5" to its bucket
func ratingIndex(answer string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if err != nil {
		return -1, false
	}
	halves := v * 2
	if halves != math.Trunc(halves) || halves < 1 || halves > float64(len(ratingBuckets)) {
		return -1, false
	}
	return int(halves) - 1, true
}

// ParseRating reports whether answer names one of the rating buckets and
// returns its value
func ParseRating(answer string) (float64, bool) {
	i, ok := ratingIndex(answer)
	if !ok {
		return 0, false
	}
	return ratingValue(i), true
}

// ratingValue is the numeric value of bucket i, half points included
func ratingValue(i int) float64 {
	return float64(i+1) / 2
}

// Distribution counts answers per bucket. Buckets are fixed when the
// distribution is created; an answer outside them can't be counted.
type Distribution struct {
	buckets     []string
	counts      []int
	percentages []float64
}

func newDistribution(buckets []string) *Distribution {
	return &Distribution{
		buckets:     append([]string(nil), buckets...),
		counts:      make([]int, len(buckets)),
		percentages: make([]float64, len(buckets)),
	}
}

func (d *Distribution) index(bucket string) (int, bool) {
	for i, b := range d.buckets {
		if b == bucket {
			return i, true
		}
	}
	return -1, false
}

// finalize derives percentages from counts, 0 when nothing was answered
func (d *Distribution) finalize(total int) {
	for i, c := range d.counts {
		if total == 0 {
			d.percentages[i] = 0
			continue
		}
		d.percentages[i] = round2(float64(c) / float64(total) * 100)
	}
}

// Buckets returns bucket labels in display order
func (d *Distribution) Buckets() []string {
	return append([]string(nil), d.buckets...)
}

// Count returns the count for a bucket, 0 for unknown buckets
func (d *Distribution) Count(bucket string) int {
	if i, ok := d.index(bucket); ok {
		return d.counts[i]
	}
	return 0
}

// Percentage returns the share of a bucket in percent, rounded to 2 decimals
func (d *Distribution) Percentage(bucket string) float64 {
	if i, ok := d.index(bucket); ok {
		return d.percentages[i]
	}
	return 0
}

// MarshalJSON renders {"count": {...}, "percentage": {...}} keeping bucket order
func (d *Distribution) MarshalJSON() ([]byte, error) {
	counts := make([]field, len(d.buckets))
	pcts := make([]field, len(d.buckets))
	for i, b := range d.buckets {
		counts[i] = field{key: b, value: d.counts[i]}
		pcts[i] = field{key: b, value: d.percentages[i]}
	}
	countJSON, err := marshalObject(counts)
	if err != nil {
		return nil, err
	}
	pctJSON, err := marshalObject(pcts)
	if err != nil {
		return nil, err
	}
	return marshalObject([]field{
		{key: "count", value: json.RawMessage(countJSON)},
		{key: "percentage", value: json.RawMessage(pctJSON)},
	})
}

type field struct {
	key   string
	value interface{}
}

// marshalObject writes a JSON object with keys in the given order
func marshalObject(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func round2(v float64) float64 {
	scaled := v * 100
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.Round(scaled) / 100
}
