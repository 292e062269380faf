package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/logger"
)

// RequestID tags every request with an id, propagated in the response and
// the logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse is the envelope every failed request is rendered with.
type ErrorResponse struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error"`
	Code      apperrors.ErrorCode    `json:"code"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler renders errors attached to the gin context and recovers from
// panics with a generic internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Str("request_id", c.GetString("request_id")).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", recovered).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")

				RespondError(c, apperrors.New(apperrors.ErrCodeInternal, "Error interno del servidor"))
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			RespondError(c, c.Errors.Last().Err)
		}
	}
}

// RespondError maps an error to its HTTP status and writes the envelope.
// Internal causes are logged but never leaked to the client.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "Error interno del servidor")
	}

	if appErr.IsInternal() {
		logger.Error().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Err(appErr).
			Msg("Request failed")
	}

	message := appErr.Message
	details := appErr.Details
	if appErr.IsInternal() {
		message = "Error interno del servidor"
		details = nil
	}

	c.JSON(statusFor(appErr.Code), ErrorResponse{
		Success:   false,
		Error:     message,
		Code:      appErr.Code,
		Details:   details,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeConflict, apperrors.ErrCodeState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
