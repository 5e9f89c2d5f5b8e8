package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"insightform/internal/analytics"
	"insightform/internal/cache"
	"insightform/internal/model"
	"insightform/internal/repository"
)

// ReportAI is the text-generation side of report generation
type ReportAI interface {
	Enabled() bool
	Summarize(ctx context.Context, form *model.Form, processed []byte) (string, error)
	Suggest(ctx context.Context, form *model.Form, processed []byte) ([]model.Suggestion, error)
}

// ReportService builds chart payloads and AI reports from a form's responses
type ReportService struct {
	forms        *FormService
	responseRepo repository.ResponseRepo
	reportRepo   repository.ReportRepo
	chartCache   cache.ChartCache
	ai           ReportAI
	aggregator   *analytics.Aggregator
	broadcaster  Broadcaster
	logger       *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	forms *FormService,
	responseRepo repository.ResponseRepo,
	reportRepo repository.ReportRepo,
	chartCache cache.ChartCache,
	ai ReportAI,
	logger *zap.Logger,
) *ReportService {
	logger = logger.Named("reports")
	return &ReportService{
		forms:        forms,
		responseRepo: responseRepo,
		reportRepo:   reportRepo,
		chartCache:   chartCache,
		ai:           ai,
		aggregator:   analytics.NewAggregator(logger),
		logger:       logger,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ReportService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Charts returns the chart payload of a form as JSON. Payloads are cached per
// response count.
func (s *ReportService) Charts(ctx context.Context, ownerID, formID string) ([]byte, error) {
	form, err := s.forms.Get(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}

	count, err := s.responseRepo.CountByFormID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	cached, err := s.chartCache.Get(ctx, formID, count)
	if err != nil {
		s.logger.Warn("chart cache read failed", zap.String("formId", formID), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	responses, err := s.responseRepo.GetByFormID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	processed := s.aggregator.Aggregate(form.Questions, responses, analytics.ContextChart)
	payload, err := json.Marshal(analytics.FormatForCharts(processed))
	if err != nil {
		return nil, fmt.Errorf("encode charts: %w", err)
	}

	if err := s.chartCache.Set(ctx, formID, count, payload); err != nil {
		s.logger.Warn("chart cache write failed", zap.String("formId", formID), zap.Error(err))
	}
	return payload, nil
}

// Generate aggregates the form, asks the AI for a summary and suggestions and
// stores the report. Without AI, or when it fails, a local summary is used.
func (s *ReportService) Generate(ctx context.Context, ownerID, formID string) (*model.Report, error) {
	form, err := s.forms.Get(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.GetByFormID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	processed := s.aggregator.Aggregate(form.Questions, responses, analytics.ContextAI)
	report := &model.Report{
		FormID:         formID,
		Suggestions:    []model.Suggestion{},
		Warnings:       processed.Warnings(),
		TotalResponses: processed.TotalFormResponses,
	}

	if s.ai != nil && s.ai.Enabled() && processed.TotalFormResponses > 0 {
		payload, err := json.Marshal(processed)
		if err != nil {
			return nil, fmt.Errorf("encode aggregate: %w", err)
		}

		summary, err := s.ai.Summarize(ctx, form, payload)
		if err != nil {
			s.logger.Warn("ai summary failed, using local summary", zap.String("formId", formID), zap.Error(err))
		}
		report.Summary = summary

		suggestions, err := s.ai.Suggest(ctx, form, payload)
		if err != nil {
			s.logger.Warn("ai suggestions failed", zap.String("formId", formID), zap.Error(err))
		}
		report.Suggestions = filterSuggestions(suggestions)
	}

	report.Status = model.ReportStatusReady
	if report.Summary == "" {
		report.Summary = localSummary(processed)
		report.Status = model.ReportStatusFallback
	}

	now := time.Now()
	report.GeneratedAt = &now

	if err := s.reportRepo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(formID, EventReportReady, map[string]interface{}{
			"formId": formID,
			"status": report.Status,
		})
	}

	s.logger.Info("report generated",
		zap.String("formId", formID),
		zap.String("status", report.Status),
		zap.Int("responses", report.TotalResponses),
		zap.Int("warnings", report.Warnings),
	)
	return report, nil
}

// Get returns the last stored report, or a not_started placeholder
func (s *ReportService) Get(ctx context.Context, ownerID, formID string) (*model.Report, error) {
	if _, err := s.forms.Get(ctx, ownerID, formID); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByFormID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if report == nil {
		return &model.Report{
			FormID:      formID,
			Status:      model.ReportStatusNotStarted,
			Suggestions: []model.Suggestion{},
		}, nil
	}
	return report, nil
}

// filterSuggestions keeps well-formed text, mcq and rating suggestions
func filterSuggestions(in []model.Suggestion) []model.Suggestion {
	out := []model.Suggestion{}
	for _, sug := range in {
		sug.QuestionText = strings.TrimSpace(sug.QuestionText)
		if sug.QuestionText == "" {
			continue
		}

		switch sug.QuestionType {
		case model.QuestionTypeMCQ:
			if len(sug.Options) < 2 {
				continue
			}
		case model.QuestionTypeText, model.QuestionTypeRating:
			sug.Options = []string{}
		default:
			continue
		}
		out = append(out, sug)
	}
	return out
}

// localSummary describes the aggregate without a language model
func localSummary(p *analytics.ProcessedData) string {
	var parts []string
	switch p.TotalFormResponses {
	case 0:
		return "No responses yet."
	case 1:
		parts = append(parts, "1 response collected.")
	default:
		parts = append(parts, strconv.Itoa(p.TotalFormResponses)+" responses collected.")
	}
	if w := p.Warnings(); w > 0 {
		parts = append(parts, fmt.Sprintf("%d answers could not be counted.", w))
	}

	for _, e := range p.Entries() {
		h := e.Stats.Summary()
		if h.TotalResponses == 0 {
			continue
		}

		switch s := e.Stats.(type) {
		case *analytics.McqStats:
			top, best := "", -1
			for _, b := range s.Distribution.Buckets() {
				if c := s.Distribution.Count(b); c > best {
					top, best = b, c
				}
			}
			parts = append(parts, fmt.Sprintf("%s: most chose %q (%s%%).", h.QuestionText, top, formatFloat(s.Distribution.Percentage(top))))
		case *analytics.RatingStats:
			parts = append(parts, fmt.Sprintf("%s: average rating %s out of 5.", h.QuestionText, formatFloat(s.AvgRating)))
		case *analytics.NumberStats:
			parts = append(parts, fmt.Sprintf("%s: average %s (range %s to %s).", h.QuestionText,
				formatFloat(s.Average), formatFloat(s.MinValue), formatFloat(s.MaxValue)))
		default:
			parts = append(parts, fmt.Sprintf("%s: %d written answers.", h.QuestionText, h.TotalResponses))
		}
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
