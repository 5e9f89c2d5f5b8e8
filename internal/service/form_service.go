package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"insightform/internal/cache"
	"insightform/internal/model"
	"insightform/internal/repository"
)

// FormService handles form CRUD and share links
type FormService struct {
	formRepo     repository.FormRepo
	responseRepo repository.ResponseRepo
	reportRepo   repository.ReportRepo
	linkCache    cache.LinkCache
	chartCache   cache.ChartCache
	broadcaster  Broadcaster
	logger       *zap.Logger
}

// NewFormService creates a new form service
func NewFormService(
	formRepo repository.FormRepo,
	responseRepo repository.ResponseRepo,
	reportRepo repository.ReportRepo,
	linkCache cache.LinkCache,
	chartCache cache.ChartCache,
	logger *zap.Logger,
) *FormService {
	return &FormService{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		reportRepo:   reportRepo,
		linkCache:    linkCache,
		chartCache:   chartCache,
		logger:       logger.Named("forms"),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *FormService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create validates and stores a new form for the owner. The form starts open.
func (s *FormService) Create(ctx context.Context, ownerID string, form *model.Form) (*model.Form, error) {
	if err := normalizeForm(form); err != nil {
		return nil, err
	}

	form.ID = ""
	form.OwnerID = ownerID
	form.ShareSlug = newShareSlug()
	form.IsOpen = true

	id, err := s.formRepo.Create(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	form.ID = id

	s.logger.Info("form created", zap.String("formId", id), zap.String("ownerId", ownerID), zap.Int("questions", len(form.Questions)))
	return form, nil
}

// List returns the owner's forms, newest first
func (s *FormService) List(ctx context.Context, ownerID string) ([]*model.Form, error) {
	return s.formRepo.GetByOwnerID(ctx, ownerID)
}

// Get returns a form the owner may manage
func (s *FormService) Get(ctx context.Context, ownerID, formID string) (*model.Form, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	if form.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return form, nil
}

// Update replaces title, description and questions. Existing responses keep
// their snapshots, so edited questions aggregate separately.
func (s *FormService) Update(ctx context.Context, ownerID, formID string, input *model.Form) (*model.Form, error) {
	form, err := s.Get(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}
	if err := normalizeForm(input); err != nil {
		return nil, err
	}

	form.Title = input.Title
	form.Description = input.Description
	form.Questions = input.Questions

	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	s.invalidateCharts(ctx, formID)
	return form, nil
}

// Delete removes a form with its responses and report
func (s *FormService) Delete(ctx context.Context, ownerID, formID string) error {
	form, err := s.Get(ctx, ownerID, formID)
	if err != nil {
		return err
	}

	if err := s.responseRepo.DeleteByFormID(ctx, formID); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	if err := s.reportRepo.DeleteByFormID(ctx, formID); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if err := s.formRepo.Delete(ctx, formID); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}

	if err := s.linkCache.Delete(ctx, form.ShareSlug); err != nil {
		s.logger.Warn("link cache delete failed", zap.String("slug", form.ShareSlug), zap.Error(err))
	}
	s.invalidateCharts(ctx, formID)

	if s.broadcaster != nil {
		s.broadcaster.DisconnectForm(formID)
	}
	return nil
}

// SetOpen opens or closes a form for new responses
func (s *FormService) SetOpen(ctx context.Context, ownerID, formID string, open bool) (*model.Form, error) {
	form, err := s.Get(ctx, ownerID, formID)
	if err != nil {
		return nil, err
	}
	if form.IsOpen == open {
		return form, nil
	}

	form.IsOpen = open
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}

	if !open && s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(formID, EventFormClosed, map[string]string{"formId": formID})
	}
	return form, nil
}

// GetBySlug resolves a share link, cached in Redis
func (s *FormService) GetBySlug(ctx context.Context, slug string) (*model.Form, error) {
	formID, err := s.linkCache.GetFormID(ctx, slug)
	if err != nil {
		s.logger.Warn("link cache lookup failed", zap.String("slug", slug), zap.Error(err))
	}

	if formID != "" {
		form, err := s.formRepo.GetByID(ctx, formID)
		if err != nil {
			return nil, fmt.Errorf("get form: %w", err)
		}
		if form != nil && form.ShareSlug == slug {
			return form, nil
		}
	}

	form, err := s.formRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get form by slug: %w", err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}

	if err := s.linkCache.SetFormID(ctx, slug, form.ID); err != nil {
		s.logger.Warn("link cache store failed", zap.String("slug", slug), zap.Error(err))
	}
	return form, nil
}

// GetPublic returns what a respondent sees through a share link
func (s *FormService) GetPublic(ctx context.Context, slug string) (*model.PublicForm, error) {
	form, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return form.Public(), nil
}

func (s *FormService) invalidateCharts(ctx context.Context, formID string) {
	if err := s.chartCache.Invalidate(ctx, formID); err != nil {
		s.logger.Warn("chart cache invalidate failed", zap.String("formId", formID), zap.Error(err))
	}
}

// normalizeForm trims and validates a form in place and assigns missing
// question IDs.
func normalizeForm(form *model.Form) error {
	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidForm)
	}

	seen := make(map[string]bool, len(form.Questions))
	for i := range form.Questions {
		q := &form.Questions[i]
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidForm, i+1)
		}
		if !q.Type.IsValid() {
			return fmt.Errorf("%w: question %d has unknown type %q", ErrInvalidForm, i+1, q.Type)
		}

		if q.Type == model.QuestionTypeMCQ {
			if err := normalizeOptions(q); err != nil {
				return fmt.Errorf("%w: question %d: %v", ErrInvalidForm, i+1, err)
			}
		} else if len(q.Options) > 0 {
			return fmt.Errorf("%w: question %d: only mcq questions take options", ErrInvalidForm, i+1)
		}

		if q.ID != "" {
			if seen[q.ID] {
				return fmt.Errorf("%w: duplicate question id %q", ErrInvalidForm, q.ID)
			}
			seen[q.ID] = true
		}
	}

	next := 1
	for i := range form.Questions {
		q := &form.Questions[i]
		if q.ID != "" {
			continue
		}
		for seen["q"+strconv.Itoa(next)] {
			next++
		}
		q.ID = "q" + strconv.Itoa(next)
		seen[q.ID] = true
	}
	return nil
}

func normalizeOptions(q *model.Question) error {
	opts := make([]string, 0, len(q.Options))
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return fmt.Errorf("empty option")
		}
		if seen[o] {
			return fmt.Errorf("duplicate option %q", o)
		}
		seen[o] = true
		opts = append(opts, o)
	}
	if len(opts) < 2 {
		return fmt.Errorf("mcq needs at least two options")
	}
	q.Options = opts
	return nil
}

func newShareSlug() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
