package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vibe-gaming/notes/internal/service"
	"github.com/vibe-gaming/notes/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type messageResponse struct {
	Message string `json:"message"`
}

func errorResponse(c *gin.Context, e apiError) {
	c.AbortWithStatusJSON(e.status, ErrorStruct{
		ErrorCode: e.code,
		Message:   e.message,
	})
}

// RateLimitExceeded renders the rate limit error for requests rejected
// before they reach a route.
func RateLimitExceeded(c *gin.Context, _ time.Duration) {
	errorResponse(c, errRateLimited)
}

func validationErrorResponse(c *gin.Context, verr validator.ValidationErrors) {
	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
		ErrorCode: ValidationErrorCode,
		Message:   ValidationErrorMessage,
		Errors:    out,
	})
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %v characters", value)
	case "max":
		return fmt.Sprintf("Must be at most %v characters", value)
	case "dob":
		return "Date of birth must be a valid past date (e.g., YYYY-MM-DD)"
	case "otp":
		return "Code must be a 6-digit number"
	}
	return tag
}

// errorMiddleware renders the last error a handler attached with c.Error.
func (h *Handler) errorMiddleware(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err

	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		validationErrorResponse(c, verr)
		return
	}

	var rateLimitErr *service.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", strconv.Itoa(rateLimitErr.RetryAfterSeconds()))
		errorResponse(c, errRateLimited)
		return
	}

	switch {
	case c.Errors.Last().IsType(gin.ErrorTypeBind):
		errorResponse(c, errInvalidBody)
	case errors.Is(err, service.ErrUserAlreadyRegistered):
		errorResponse(c, errUserAlreadyExists)
	case errors.Is(err, service.ErrUserNotFound):
		errorResponse(c, errUserNotFound)
	case errors.Is(err, service.ErrInvalidSession):
		errorResponse(c, errInvalidSession)
	case errors.Is(err, service.ErrUnauthorized):
		errorResponse(c, errUnauthorized)
	case errors.Is(err, service.ErrNoteNotFound):
		errorResponse(c, errNoteNotFound)
	case errors.Is(err, service.ErrNoteAlreadyExists):
		errorResponse(c, errNoteAlreadyExists)
	default:
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		errorResponse(c, errInternal)
	}
}
