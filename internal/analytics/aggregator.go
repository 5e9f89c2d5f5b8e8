package analytics

import (
	"go.uber.org/zap"

	"insightform/internal/model"
)

// Aggregator folds responses into per-question statistics. It holds no state
// between calls and is safe for concurrent use.
type Aggregator struct {
	logger *zap.Logger
}

func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Aggregate builds the statistics for a form from all of its responses.
// Answers that can't be folded are collected on the result, never fatal.
func (a *Aggregator) Aggregate(questions []model.Question, responses []model.Response, ctx Context) *ProcessedData {
	p := newProcessedData()

	for _, q := range questions {
		p.seed(QuestionKey(q), q.Text, q.Type, q.Options)
	}

	for _, r := range responses {
		for _, ans := range r.Answers {
			if err := a.fold(p, ans); err != nil {
				p.Rejected = append(p.Rejected, err)
				a.logger.Warn("answer rejected",
					zap.String("formId", r.FormID),
					zap.String("responseId", r.ID),
					zap.String("questionId", ans.QuestionID),
					zap.Error(err),
				)
			}
		}
	}

	for _, e := range p.entries {
		e.Stats.finalize()
	}

	p.TotalFormResponses = len(responses)

	if ctx == ContextAI {
		for _, e := range p.entries {
			if n, ok := e.Stats.(*NumberStats); ok {
				n.Answers = nil
			}
		}
	}

	return p
}

func (a *Aggregator) fold(p *ProcessedData, ans model.Answer) error {
	key := AnswerKey(ans)
	if ans.QuestionID == "" {
		return &MalformedAnswerError{Key: key, Value: ans.Answer, Reason: "missing question id"}
	}

	stats := p.seed(key, ans.QuestionText, ans.QuestionType, ans.Options)
	if !ans.HasResponse() {
		return nil
	}

	if got := stats.Summary().QuestionType; got != ans.QuestionType {
		return &MalformedAnswerError{
			Key:    key,
			Value:  ans.Answer,
			Reason: "answer type " + string(ans.QuestionType) + " does not match question type " + string(got),
		}
	}

	return stats.fold(key, ans.Answer)
}

// Aggregate runs a nop-logging Aggregator
func Aggregate(questions []model.Question, responses []model.Response, ctx Context) *ProcessedData {
	return NewAggregator(nil).Aggregate(questions, responses, ctx)
}
