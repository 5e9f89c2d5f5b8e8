package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"insightform/internal/model"
	"insightform/internal/service"
	"insightform/internal/transport/rest/middleware"
)

const maxSubmissionBytes = 1 << 20

// ResponseHandler handles submissions and their listing
type ResponseHandler struct {
	responseSvc *service.ResponseService
	errs        *ErrorWriter
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService, errs *ErrorWriter) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc, errs: errs}
}

// Submit handles POST /v1/s/{slug}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.responseSvc.Submit(r.Context(), mux.Vars(r)["slug"], &req, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":          resp.ID,
		"submittedAt": resp.SubmittedAt,
	})
}

// List handles GET /v1/forms/{formId}/responses
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	responses, err := h.responseSvc.List(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"])
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"responses": responses,
		"total":     len(responses),
	})
}
