package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
	"github.com/MJE43/pf-casino-engine/internal/session"
	"github.com/MJE43/pf-casino-engine/internal/store"
)

// errSeedNotRevealed is returned when verification asks for a secret that
// is still committed.
var errSeedNotRevealed = errors.New("seed not revealed yet")

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	e := EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(eb.context) > 0 {
		e.Context = eb.context
	}
	return e
}

// classify maps domain errors onto a status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, casino.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrTypeInsufficient
	case errors.Is(err, games.ErrInvalidBet):
		return http.StatusBadRequest, ErrTypeInvalidBet
	case errors.Is(err, games.ErrInvalidParameter), errors.Is(err, fair.ErrInvalidRange):
		return http.StatusBadRequest, ErrTypeInvalidParams
	case errors.Is(err, games.ErrAlreadyRevealed):
		return http.StatusConflict, ErrTypeAlreadyRevealed
	case errors.Is(err, games.ErrInvalidTransition):
		return http.StatusConflict, ErrTypeInvalidTransition
	case errors.Is(err, session.ErrSessionConflict):
		return http.StatusConflict, ErrTypeSessionConflict
	case errors.Is(err, errSeedNotRevealed):
		return http.StatusConflict, ErrTypeSeedNotRevealed
	case errors.Is(err, session.ErrNoSession):
		return http.StatusNotFound, ErrTypeNoSession
	case errors.Is(err, seeds.ErrSeedNotFound), errors.Is(err, store.ErrPlayerNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	case errors.Is(err, fair.ErrNoActiveSeed), errors.Is(err, session.ErrClosed), errors.Is(err, casino.ErrSeedChangeUnsupported):
		return http.StatusServiceUnavailable, ErrTypeServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, ErrTypeTimeout
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

// ErrorHandler writes error responses and logs them.
type ErrorHandler struct {
	logger   *slog.Logger
	security *SecurityLogger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, security *SecurityLogger) *ErrorHandler {
	return &ErrorHandler{logger: logger, security: security}
}

// HandleError classifies err and writes it. Internal errors hide their
// message from the client.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	engineErr := NewError(errType, msg).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	eh.logError(r, engineErr, status, err)
	eh.writeErrorResponse(w, status, engineErr)
}

// HandleValidationError rejects a malformed request field.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())

	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	eh.security.LogSecurityEvent(requestID, "validation_failure", message,
		map[string]any{"field": field, "path": r.URL.Path}, r.RemoteAddr)

	eh.logError(r, engineErr, http.StatusBadRequest, nil)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// HandleUnauthorized rejects a request without a valid admin token.
func (eh *ErrorHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	engineErr := NewError(ErrTypeUnauthorized, "Missing or invalid API token").
		WithRequestID(requestID).
		WithContext("path", r.URL.Path).
		Build()

	eh.security.LogSecurityEvent(requestID, "unauthorized", "admin call rejected",
		map[string]any{"path": r.URL.Path}, r.RemoteAddr)
	eh.writeErrorResponse(w, http.StatusUnauthorized, engineErr)
}

func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int, cause error) {
	category := GetErrorCategory(engineErr.Type)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []any{
		"type", engineErr.Type,
		"category", category,
		"status", status,
		"request_id", engineErr.RequestID,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if cause != nil {
		attrs = append(attrs, logging.Err(cause))
	}
	eh.logger.Log(r.Context(), level, engineErr.Message, attrs...)
}

func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Error("write error response", logging.Err(err))
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Error("panic recovered",
					"request_id", requestID,
					"path", r.URL.Path,
					"method", r.Method,
					"panic", fmt.Sprint(rvr),
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()
				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
