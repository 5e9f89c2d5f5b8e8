package analytics

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightform/internal/model"
)

func answerTo(q model.Question, value string) model.Answer {
	return model.Answer{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		QuestionType: q.Type,
		Options:      q.Options,
		Answer:       value,
	}
}

func responsesFor(q model.Question, values ...string) []model.Response {
	out := make([]model.Response, len(values))
	for i, v := range values {
		out[i] = model.Response{FormID: "f1", Answers: []model.Answer{answerTo(q, v)}}
	}
	return out
}

var (
	colorQ  = model.Question{ID: "q1", Text: "Favourite colour?", Type: model.QuestionTypeMCQ, Options: []string{"A", "B"}}
	ratingQ = model.Question{ID: "q2", Text: "Rate us", Type: model.QuestionTypeRating}
	ageQ    = model.Question{ID: "q3", Text: "Age", Type: model.QuestionTypeNumber}
	notesQ  = model.Question{ID: "q4", Text: "Anything else?", Type: model.QuestionTypeText}
)

func TestAggregateMCQ(t *testing.T) {
	p := Aggregate([]model.Question{colorQ}, responsesFor(colorQ, "A", "A", "B"), ContextChart)

	stats, ok := p.Get(QuestionKey(colorQ))
	require.True(t, ok)
	mcq, ok := stats.(*McqStats)
	require.True(t, ok)

	assert.Equal(t, 3, mcq.TotalResponses)
	assert.Equal(t, 2, mcq.Distribution.Count("A"))
	assert.Equal(t, 1, mcq.Distribution.Count("B"))
	assert.Equal(t, 66.67, mcq.Distribution.Percentage("A"))
	assert.Equal(t, 33.33, mcq.Distribution.Percentage("B"))
	assert.Equal(t, 3, p.TotalFormResponses)
	assert.Zero(t, p.Warnings())
}

func TestAggregateRating(t *testing.T) {
	t.Run("average", func(t *testing.T) {
		p := Aggregate([]model.Question{ratingQ}, responsesFor(ratingQ, "3", "3", "5"), ContextChart)
		stats, _ := p.Get(QuestionKey(ratingQ))
		r := stats.(*RatingStats)

		assert.Equal(t, 3, r.TotalResponses)
		assert.Equal(t, 3.67, r.AvgRating)
		assert.Equal(t, 2, r.Distribution.Count("3"))
		assert.Equal(t, RatingBuckets(), r.Distribution.Buckets())
	})

	t.Run("half points keep their value", func(t *testing.T) {
		p := Aggregate([]model.Question{ratingQ}, responsesFor(ratingQ, "4.5", "3.5"), ContextChart)
		stats, _ := p.Get(QuestionKey(ratingQ))
		r := stats.(*RatingStats)

		assert.Equal(t, 4.0, r.AvgRating)
		assert.Equal(t, 1, r.Distribution.Count("4.5"))
		assert.Equal(t, 50.0, r.Distribution.Percentage("3.5"))
	})

	t.Run("off-scale value rejected", func(t *testing.T) {
		p := Aggregate([]model.Question{ratingQ}, responsesFor(ratingQ, "4", "7", "2.25"), ContextChart)
		stats, _ := p.Get(QuestionKey(ratingQ))

		assert.Equal(t, 1, stats.Summary().TotalResponses)
		assert.Equal(t, 2, p.Warnings())
		for _, err := range p.Rejected {
			assert.ErrorIs(t, err, ErrUnknownBucket)
		}
	})
}

func TestAggregateNumber(t *testing.T) {
	p := Aggregate([]model.Question{ageQ}, responsesFor(ageQ, "1", "5", "10"), ContextChart)
	stats, _ := p.Get(QuestionKey(ageQ))
	n := stats.(*NumberStats)

	assert.Equal(t, 3, n.TotalResponses)
	assert.Equal(t, 1.0, n.MinValue)
	assert.Equal(t, 10.0, n.MaxValue)
	assert.Equal(t, 5.33, n.Average)
	assert.Equal(t, []float64{1, 5, 10}, n.Answers)
}

func TestAggregateNumberNearFloatLimits(t *testing.T) {
	p := Aggregate([]model.Question{ageQ}, responsesFor(ageQ, "1e308", "1e308", "-1e308"), ContextChart)
	stats, _ := p.Get(QuestionKey(ageQ))
	n := stats.(*NumberStats)

	assert.InDelta(t, 1e308/3, n.Average, 1e294)
	assert.Equal(t, -1e308, n.MinValue)
	assert.Equal(t, 1e308, n.MaxValue)

	_, err := json.Marshal(p)
	require.NoError(t, err)
}

func TestAggregateText(t *testing.T) {
	p := Aggregate([]model.Question{notesQ}, responsesFor(notesQ, "  great  ", "ok"), ContextChart)
	stats, _ := p.Get(QuestionKey(notesQ))
	txt := stats.(*TextStats)

	assert.Equal(t, 2, txt.TotalResponses)
	assert.Equal(t, []string{"  great  ", "ok"}, txt.Answers)
}

func TestAggregateEmptyAnswers(t *testing.T) {
	questions := []model.Question{colorQ, ratingQ, ageQ, notesQ}
	var responses []model.Response
	for i := 0; i < 4; i++ {
		responses = append(responses, model.Response{Answers: []model.Answer{
			answerTo(colorQ, ""),
			answerTo(ratingQ, "   "),
			answerTo(ageQ, "\t"),
			answerTo(notesQ, ""),
		}})
	}

	p := Aggregate(questions, responses, ContextChart)
	require.Len(t, p.Entries(), 4)
	assert.Equal(t, 4, p.TotalFormResponses)

	for _, e := range p.Entries() {
		assert.Zero(t, e.Stats.Summary().TotalResponses, e.Key.String())
	}

	mcq := p.Entries()[0].Stats.(*McqStats)
	assert.Zero(t, mcq.Distribution.Percentage("A"))
	assert.Zero(t, mcq.Distribution.Percentage("B"))

	r := p.Entries()[1].Stats.(*RatingStats)
	assert.Zero(t, r.AvgRating)

	n := p.Entries()[2].Stats.(*NumberStats)
	assert.Zero(t, n.Average)
	assert.Zero(t, n.MinValue)
	assert.Zero(t, n.MaxValue)

	_, err := json.Marshal(p)
	assert.NoError(t, err)
}

func TestAggregateNoResponses(t *testing.T) {
	p := Aggregate([]model.Question{colorQ, ageQ}, nil, ContextChart)

	assert.Zero(t, p.TotalFormResponses)
	assert.Len(t, p.Entries(), 2)

	charts := FormatForCharts(p)
	h := charts.Entries()[1].Chart.(*HistogramChart)
	assert.Empty(t, h.Bins)
	assert.NotNil(t, h.Bins)
	assert.Empty(t, h.BinCounts)
}

func TestAggregateIsIdempotent(t *testing.T) {
	questions := []model.Question{colorQ, ratingQ, ageQ, notesQ}
	responses := []model.Response{
		{Answers: []model.Answer{answerTo(colorQ, "A"), answerTo(ratingQ, "4"), answerTo(ageQ, "30"), answerTo(notesQ, "fine")}},
		{Answers: []model.Answer{answerTo(colorQ, "B"), answerTo(ratingQ, "2.5"), answerTo(ageQ, "41"), answerTo(notesQ, "")}},
	}

	first := Aggregate(questions, responses, ContextAI)
	second := Aggregate(questions, responses, ContextAI)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAggregateKeyForking(t *testing.T) {
	edited := colorQ
	edited.Options = []string{"A", "B", "C"}
	reordered := colorQ
	reordered.Options = []string{"B", "A"}

	responses := []model.Response{
		{Answers: []model.Answer{answerTo(colorQ, "A")}},
		{Answers: []model.Answer{answerTo(reordered, "B")}},
		{Answers: []model.Answer{answerTo(edited, "C")}},
	}

	p := Aggregate([]model.Question{edited}, responses, ContextChart)
	entries := p.Find("q1")
	require.Len(t, entries, 2)

	// current form question comes first
	assert.Equal(t, QuestionKey(edited), entries[0].Key)
	assert.Equal(t, 1, entries[0].Stats.Summary().TotalResponses)

	old := entries[1].Stats.(*McqStats)
	assert.Equal(t, 2, old.TotalResponses)
	assert.Equal(t, 1, old.Distribution.Count("A"))
	assert.Equal(t, 1, old.Distribution.Count("B"))
	assert.Equal(t, "q1_Favourite colour?_A_B", entries[1].Key.String())

	reworded := notesQ
	reworded.Text = "Any other thoughts?"
	p = Aggregate([]model.Question{reworded}, responsesFor(notesQ, "hi"), ContextChart)
	assert.Len(t, p.Find("q4"), 2)
}

func TestCollidingLabelsStayDistinct(t *testing.T) {
	joined := model.Question{ID: "q1", Text: "Pick", Type: model.QuestionTypeMCQ, Options: []string{"a_b", "c"}}
	split := model.Question{ID: "q1", Text: "Pick", Type: model.QuestionTypeMCQ, Options: []string{"a", "b_c"}}
	idUnderscore := model.Question{ID: "q2_x", Text: "y", Type: model.QuestionTypeText}
	textUnderscore := model.Question{ID: "q2", Text: "x_y", Type: model.QuestionTypeText}

	responses := []model.Response{
		{Answers: []model.Answer{answerTo(joined, "a_b"), answerTo(idUnderscore, "first")}},
		{Answers: []model.Answer{answerTo(split, "a"), answerTo(textUnderscore, "second")}},
	}
	p := Aggregate([]model.Question{joined, idUnderscore}, responses, ContextAI)
	require.Len(t, p.Entries(), 4)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Len(t, out, 5)
	assert.Contains(t, out, "q1_Pick_a_b_c")
	assert.Contains(t, out, "q1_Pick_a_b_c#2")
	assert.Contains(t, string(out["q2_x_y"]), "first")
	assert.Contains(t, string(out["q2_x_y#2"]), "second")

	charts, err := json.Marshal(FormatForCharts(p))
	require.NoError(t, err)
	out = nil
	require.NoError(t, json.Unmarshal(charts, &out))
	assert.Len(t, out, 4)
}

func TestUniqueLabelsSkipTakenSuffixes(t *testing.T) {
	a := NewKey("q1", "x", model.QuestionTypeText, nil)
	b := NewKey("q1_x", "", model.QuestionTypeText, nil)
	b.label = "q1_x"
	c := NewKey("q1_x#2", "", model.QuestionTypeText, nil)
	c.label = "q1_x#2"

	assert.Equal(t, []string{"q1_x", "q1_x#3", "q1_x#2"}, uniqueLabels([]AggregationKey{a, b, c}))
}

func TestAggregateRejections(t *testing.T) {
	t.Run("unknown mcq bucket", func(t *testing.T) {
		p := Aggregate([]model.Question{colorQ}, responsesFor(colorQ, "A", "Z"), ContextChart)
		stats, _ := p.Get(QuestionKey(colorQ))

		assert.Equal(t, 1, stats.Summary().TotalResponses)
		assert.Equal(t, 100.0, stats.(*McqStats).Distribution.Percentage("A"))
		require.Len(t, p.Rejected, 1)

		var bucketErr *UnknownBucketError
		require.True(t, errors.As(p.Rejected[0], &bucketErr))
		assert.Equal(t, "Z", bucketErr.Bucket)
		assert.Equal(t, QuestionKey(colorQ), bucketErr.Key)
	})

	t.Run("non-numeric number", func(t *testing.T) {
		p := Aggregate([]model.Question{ageQ}, responsesFor(ageQ, "12", "twelve", "Inf"), ContextChart)
		stats, _ := p.Get(QuestionKey(ageQ))
		n := stats.(*NumberStats)

		assert.Equal(t, 1, n.TotalResponses)
		assert.Equal(t, 12.0, n.Average)
		require.Len(t, p.Rejected, 2)
		assert.ErrorIs(t, p.Rejected[0], ErrMalformedAnswer)

		var malformed *MalformedAnswerError
		require.True(t, errors.As(p.Rejected[0], &malformed))
		assert.Equal(t, "twelve", malformed.Value)
	})

	t.Run("type mismatch", func(t *testing.T) {
		asText := answerTo(ageQ, "forty")
		asText.QuestionType = model.QuestionTypeText
		p := Aggregate([]model.Question{ageQ}, []model.Response{{Answers: []model.Answer{asText}}}, ContextChart)

		require.Len(t, p.Rejected, 1)
		assert.ErrorIs(t, p.Rejected[0], ErrMalformedAnswer)
		assert.Len(t, p.Entries(), 1)
	})

	t.Run("missing question id", func(t *testing.T) {
		p := Aggregate(nil, []model.Response{{Answers: []model.Answer{{QuestionText: "?", Answer: "x"}}}}, ContextChart)

		assert.Empty(t, p.Entries())
		require.Len(t, p.Rejected, 1)
		assert.ErrorIs(t, p.Rejected[0], ErrMalformedAnswer)
	})
}

func TestAggregateLazySeeding(t *testing.T) {
	deleted := model.Question{ID: "gone", Text: "Removed question", Type: model.QuestionTypeRating}
	p := Aggregate([]model.Question{notesQ}, responsesFor(deleted, "5", ""), ContextChart)

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, QuestionKey(deleted), entries[1].Key)
	assert.Equal(t, 1, entries[1].Stats.Summary().TotalResponses)
	assert.Equal(t, 5.0, entries[1].Stats.(*RatingStats).AvgRating)
}

func TestAggregateAIContext(t *testing.T) {
	responses := []model.Response{
		{Answers: []model.Answer{answerTo(ageQ, "20"), answerTo(notesQ, "loved it")}},
	}
	p := Aggregate([]model.Question{ageQ, notesQ}, responses, ContextAI)

	n := p.Entries()[0].Stats.(*NumberStats)
	assert.Nil(t, n.Answers)
	assert.Equal(t, 20.0, n.Average)

	txt := p.Entries()[1].Stats.(*TextStats)
	assert.Equal(t, []string{"loved it"}, txt.Answers)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(stripTotal(t, raw), &decoded))
	assert.NotContains(t, decoded[QuestionKey(ageQ).String()], "answers")
	assert.Contains(t, decoded[QuestionKey(notesQ).String()], "answers")
}

func TestProcessedDataJSON(t *testing.T) {
	p := Aggregate([]model.Question{colorQ}, responsesFor(colorQ, "B"), ContextChart)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"q1_Favourite colour?_A_B": {
			"questionText": "Favourite colour?",
			"questionType": "mcq",
			"totalResponses": 1,
			"distribution": {"count": {"A": 0, "B": 1}, "percentage": {"A": 0, "B": 100}}
		},
		"totalFormResponses": 1
	}`, string(raw))
}

func decodeObject(t *testing.T, raw []byte) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func stripTotal(t *testing.T, raw []byte) []byte {
	t.Helper()
	obj := decodeObject(t, raw)
	delete(obj, "totalFormResponses")
	out, err := json.Marshal(obj)
	require.NoError(t, err)
	return out
}
