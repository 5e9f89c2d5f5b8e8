package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"insightform/internal/service"
	"insightform/internal/transport/rest/middleware"
)

// ReportHandler handles chart and report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
	errs      *ErrorWriter
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService, errs *ErrorWriter) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, errs: errs}
}

// Charts handles GET /v1/forms/{formId}/charts
func (h *ReportHandler) Charts(w http.ResponseWriter, r *http.Request) {
	payload, err := h.reportSvc.Charts(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"])
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	// payload is already ordered JSON
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// Generate handles POST /v1/forms/{formId}/report
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.Generate(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"])
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Get handles GET /v1/forms/{formId}/report
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.Get(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["formId"])
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
