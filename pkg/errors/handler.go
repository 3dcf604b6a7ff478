package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"kgms-backend/pkg/common"

	"go.uber.org/zap"
)

const internalMessage = "An internal error occurred"

// ErrorResponse is the failure envelope: {success:false, message, error?}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler is the single place failures become HTTP responses. In debug
// mode the underlying cause is copied into the "error" field.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err. Errors that are not AppErrors are
// reported as a generic 500.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := GetAppError(err)
	if appErr == nil {
		appErr = NewInternalError(internalMessage).WithCause(err)
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := ErrorResponse{Message: appErr.Message}
	if h.debug && appErr.Cause != nil {
		resp.Error = appErr.Cause.Error()
	}

	fields := h.requestFields(r, status)
	fields = append(fields, zap.String("error_type", string(appErr.Type)))
	if appErr.Operation != "" {
		fields = append(fields, zap.String("operation", appErr.Operation))
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(appErr.Message, fields...)
	} else {
		h.logger.Warn(appErr.Message, fields...)
	}

	h.write(w, status, resp)
}

// HandleStatus writes a failure with a fixed status, for responses that do
// not originate from an error value.
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn(message, h.requestFields(r, status)...)
	h.write(w, status, ErrorResponse{Message: message})
}

// Middleware recovers panics and reports them as internal errors
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(internalMessage).WithCause(fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *ErrorHandler) requestFields(r *http.Request, status int) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", common.ExtractRequestID(r)),
	}
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
