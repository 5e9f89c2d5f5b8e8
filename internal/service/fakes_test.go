package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"insightform/internal/model"
	"insightform/internal/repository"
)

type fakeFormRepo struct {
	mu    sync.Mutex
	forms map[string]*model.Form
	next  int
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{forms: map[string]*model.Form{}}
}

func (r *fakeFormRepo) Create(_ context.Context, form *model.Form) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	form.ID = "form" + strconv.Itoa(r.next)
	cp := *form
	r.forms[form.ID] = &cp
	return form.ID, nil
}

func (r *fakeFormRepo) GetByID(_ context.Context, id string) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.forms[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeFormRepo) GetBySlug(_ context.Context, slug string) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.forms {
		if f.ShareSlug == slug {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFormRepo) GetByOwnerID(_ context.Context, ownerID string) ([]*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Form{}
	for _, f := range r.forms {
		if f.OwnerID == ownerID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeFormRepo) Update(_ context.Context, form *model.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *form
	r.forms[form.ID] = &cp
	return nil
}

func (r *fakeFormRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
	return nil
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses []model.Response
}

func (r *fakeResponseRepo) Create(_ context.Context, resp *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = "resp" + strconv.Itoa(len(r.responses)+1)
	r.responses = append(r.responses, *resp)
	return nil
}

func (r *fakeResponseRepo) GetByFormID(_ context.Context, formID string) ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Response{}
	for _, resp := range r.responses {
		if resp.FormID == formID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) CountByFormID(ctx context.Context, formID string) (int64, error) {
	out, _ := r.GetByFormID(ctx, formID)
	return int64(len(out)), nil
}

func (r *fakeResponseRepo) DeleteByFormID(_ context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.responses[:0]
	for _, resp := range r.responses {
		if resp.FormID != formID {
			kept = append(kept, resp)
		}
	}
	r.responses = kept
	return nil
}

type fakeReportRepo struct {
	reports map[string]*model.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]*model.Report{}}
}

func (r *fakeReportRepo) Save(_ context.Context, report *model.Report) error {
	cp := *report
	r.reports[report.FormID] = &cp
	return nil
}

func (r *fakeReportRepo) GetByFormID(_ context.Context, formID string) (*model.Report, error) {
	return r.reports[formID], nil
}

func (r *fakeReportRepo) DeleteByFormID(_ context.Context, formID string) error {
	delete(r.reports, formID)
	return nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeChartCache struct {
	entries     map[string]map[int64][]byte
	invalidated []string
	sets        int
}

func newFakeChartCache() *fakeChartCache {
	return &fakeChartCache{entries: map[string]map[int64][]byte{}}
}

func (c *fakeChartCache) Get(_ context.Context, formID string, count int64) ([]byte, error) {
	return c.entries[formID][count], nil
}

func (c *fakeChartCache) Set(_ context.Context, formID string, count int64, payload []byte) error {
	c.sets++
	c.entries[formID] = map[int64][]byte{count: payload}
	return nil
}

func (c *fakeChartCache) Invalidate(_ context.Context, formID string) error {
	c.invalidated = append(c.invalidated, formID)
	delete(c.entries, formID)
	return nil
}

type fakeLinkCache struct {
	links map[string]string
}

func newFakeLinkCache() *fakeLinkCache {
	return &fakeLinkCache{links: map[string]string{}}
}

func (c *fakeLinkCache) SetFormID(_ context.Context, slug, formID string) error {
	c.links[slug] = formID
	return nil
}

func (c *fakeLinkCache) GetFormID(_ context.Context, slug string) (string, error) {
	return c.links[slug], nil
}

func (c *fakeLinkCache) Delete(_ context.Context, slug string) error {
	delete(c.links, slug)
	return nil
}

type broadcastEvent struct {
	FormID  string
	Type    string
	Payload interface{}
}

type fakeBroadcaster struct {
	events       []broadcastEvent
	disconnected []string
}

func (b *fakeBroadcaster) BroadcastToForm(formID, msgType string, payload interface{}) {
	b.events = append(b.events, broadcastEvent{FormID: formID, Type: msgType, Payload: payload})
}

func (b *fakeBroadcaster) DisconnectForm(formID string) {
	b.disconnected = append(b.disconnected, formID)
}

type fakeAI struct {
	enabled     bool
	summary     string
	suggestions []model.Suggestion
	err         error
	payloads    [][]byte
}

func (a *fakeAI) Enabled() bool { return a.enabled }

func (a *fakeAI) Summarize(_ context.Context, _ *model.Form, processed []byte) (string, error) {
	a.payloads = append(a.payloads, processed)
	if a.err != nil {
		return "", a.err
	}
	return a.summary, nil
}

func (a *fakeAI) Suggest(_ context.Context, _ *model.Form, _ []byte) ([]model.Suggestion, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.suggestions, nil
}

var errAIDown = errors.New("gemini unavailable")
