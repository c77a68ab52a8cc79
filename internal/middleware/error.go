package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/apperr"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  apperr.Kind `json:"code"`
	Field string      `json:"field,omitempty"`
}

// ErrorHandler renders the last error attached to the context and turns
// panics into 500 responses.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(c.Request.Context(), "panic recovered", "panic", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "internal server error",
					Code:  apperr.Internal,
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		appErr := classify(last)
		if appErr.Kind == apperr.Internal {
			log.ErrorContext(c.Request.Context(), "request failed", "error", last.Err, "path", c.Request.URL.Path)
		}
		c.JSON(appErr.Kind.Status(), ErrorResponse{Error: appErr.Message, Code: appErr.Kind, Field: appErr.Field})
	}
}

func classify(ginErr *gin.Error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(ginErr.Err, &appErr) {
		return appErr
	}
	var verrs validator.ValidationErrors
	if errors.As(ginErr.Err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.NewField(apperr.Validation, fe.Field(), "%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
	var tooLarge *http.MaxBytesError
	if errors.As(ginErr.Err, &tooLarge) {
		return apperr.New(apperr.TooLarge, "request body exceeds %d bytes", tooLarge.Limit)
	}
	if ginErr.IsType(gin.ErrorTypeBind) {
		return apperr.New(apperr.Validation, "malformed request body: %v", ginErr.Err)
	}
	return apperr.NewInternalError(ginErr.Err)
}
