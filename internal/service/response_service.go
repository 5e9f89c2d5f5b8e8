package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"insightform/internal/analytics"
	"insightform/internal/cache"
	"insightform/internal/model"
	"insightform/internal/repository"
)

// ResponseService handles public submissions and their listing
type ResponseService struct {
	forms        *FormService
	responseRepo repository.ResponseRepo
	chartCache   cache.ChartCache
	broadcaster  Broadcaster
	logger       *zap.Logger
}

// NewResponseService creates a new response service
func NewResponseService(forms *FormService, responseRepo repository.ResponseRepo, chartCache cache.ChartCache, logger *zap.Logger) *ResponseService {
	return &ResponseService{
		forms:        forms,
		responseRepo: responseRepo,
		chartCache:   chartCache,
		logger:       logger.Named("responses"),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit stores a respondent's answers. Each answer snapshots the question
// as it reads right now.
func (s *ResponseService) Submit(ctx context.Context, slug string, req *model.SubmitRequest, ip, userAgent string) (*model.Response, error) {
	form, err := s.forms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !form.IsOpen {
		return nil, ErrFormClosed
	}

	answers, err := snapshotAnswers(form, req.Answers)
	if err != nil {
		return nil, err
	}

	response := &model.Response{
		FormID:      form.ID,
		Answers:     answers,
		IP:          ip,
		UserAgent:   userAgent,
		SubmittedAt: time.Now(),
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}

	if err := s.chartCache.Invalidate(ctx, form.ID); err != nil {
		s.logger.Warn("chart cache invalidate failed", zap.String("formId", form.ID), zap.Error(err))
	}

	if s.broadcaster != nil {
		total, err := s.responseRepo.CountByFormID(ctx, form.ID)
		if err != nil {
			s.logger.Warn("count responses failed", zap.String("formId", form.ID), zap.Error(err))
		} else {
			s.broadcaster.BroadcastToForm(form.ID, EventResponseSubmitted, map[string]interface{}{
				"formId": form.ID,
				"total":  total,
			})
		}
	}

	s.logger.Debug("response submitted", zap.String("formId", form.ID), zap.String("responseId", response.ID))
	return response, nil
}

// List returns the raw responses of a form to its owner
func (s *ResponseService) List(ctx context.Context, ownerID, formID string) ([]model.Response, error) {
	if _, err := s.forms.Get(ctx, ownerID, formID); err != nil {
		return nil, err
	}
	return s.responseRepo.GetByFormID(ctx, formID)
}

// snapshotAnswers validates submitted answers against the form and produces
// one Answer per form question, empty when unanswered.
func snapshotAnswers(form *model.Form, submitted []model.SubmittedAnswer) ([]model.Answer, error) {
	byID := make(map[string]string, len(submitted))
	for _, a := range submitted {
		if _, ok := form.QuestionByID(a.QuestionID); !ok {
			return nil, fmt.Errorf("%w: unknown question %q", ErrInvalidResponse, a.QuestionID)
		}
		if _, dup := byID[a.QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %q answered twice", ErrInvalidResponse, a.QuestionID)
		}
		byID[a.QuestionID] = a.Answer
	}

	answers := make([]model.Answer, 0, len(form.Questions))
	for _, q := range form.Questions {
		value := byID[q.ID]
		trimmed := strings.TrimSpace(value)

		if trimmed == "" {
			if q.Required {
				return nil, fmt.Errorf("%w: question %q is required", ErrInvalidResponse, q.ID)
			}
		} else if err := checkAnswer(q, trimmed); err != nil {
			return nil, fmt.Errorf("%w: question %q: %v", ErrInvalidResponse, q.ID, err)
		}
		if q.Type != model.QuestionTypeText {
			value = trimmed
		}

		answers = append(answers, model.Answer{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			QuestionType: q.Type,
			Options:      append([]string(nil), q.Options...),
			Answer:       value,
		})
	}
	return answers, nil
}

func checkAnswer(q model.Question, value string) error {
	switch q.Type {
	case model.QuestionTypeMCQ:
		for _, o := range q.Options {
			if o == value {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of the options", value)
	case model.QuestionTypeRating:
		if _, ok := analytics.ParseRating(value); !ok {
			return fmt.Errorf("rating must be between 0.5 and 5 in half steps")
		}
	case model.QuestionTypeNumber:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%q is not a number", value)
		}
	}
	return nil
}
