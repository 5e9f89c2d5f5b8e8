package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"insightform/internal/model"
	"insightform/internal/service"
	"insightform/internal/transport/rest/middleware"
)

// FormHandler handles form endpoints
type FormHandler struct {
	formSvc *service.FormService
	errs    *ErrorWriter
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService, errs *ErrorWriter) *FormHandler {
	return &FormHandler{formSvc: formSvc, errs: errs}
}

// FormRequest is the request body for creating or replacing a form
type FormRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []model.Question `json:"questions"`
}

func (req *FormRequest) toForm() *model.Form {
	return &model.Form{
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
	}
}

// Create handles POST /v1/forms
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.formSvc.Create(r.Context(), middleware.GetUserID(r.Context()), req.toForm())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, form)
}

// List handles GET /v1/forms
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"forms": forms})
}

// Get handles GET /v1/forms/{formId}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.Get(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"])
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// Update handles PUT /v1/forms/{formId}
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req FormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.formSvc.Update(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"], req.toForm())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// Delete handles DELETE /v1/forms/{formId}
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.formSvc.Delete(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"]); err != nil {
		h.errs.write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Close handles POST /v1/forms/{formId}/close
func (h *FormHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, false)
}

// Open handles POST /v1/forms/{formId}/open
func (h *FormHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, true)
}

func (h *FormHandler) setOpen(w http.ResponseWriter, r *http.Request, open bool) {
	form, err := h.formSvc.SetOpen(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"], open)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// GetPublic handles GET /v1/s/{slug}
func (h *FormHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.GetPublic(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}
