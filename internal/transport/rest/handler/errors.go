package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"insightform/internal/service"
)

// ErrorWriter maps service errors to HTTP statuses. Anything unrecognised is
// logged and reported as a 500 without leaking the cause.
type ErrorWriter struct {
	logger *zap.Logger
}

// NewErrorWriter creates the error mapper shared by all handlers
func NewErrorWriter(logger *zap.Logger) *ErrorWriter {
	return &ErrorWriter{logger: logger.Named("http")}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrFormClosed):
		return http.StatusGone
	case errors.Is(err, service.ErrInvalidForm),
		errors.Is(err, service.ErrInvalidResponse),
		errors.Is(err, service.ErrInvalidSignup):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (e *ErrorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		e.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
