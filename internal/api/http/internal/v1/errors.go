package v1

import "net/http"

// Errors
const (
	InternalErrorCode    = 1000
	InternalErrorMessage = "internal server error"

	UserAlreadyExistsCode    = 1001
	UserAlreadyExistsMessage = "user already registered"
	UserNotFoundCode         = 1002
	UserNotFoundMessage      = "user not found"
	InvalidSessionCode       = 1003
	InvalidSessionMessage    = "invalid or expired verification code"
	RateLimitedCode          = 1004
	RateLimitedMessage       = "too many requests, try again later"
	UnauthorizedCode         = 1005
	UnauthorizedMessage      = "unauthorized"

	NoteNotFoundCode         = 2001
	NoteNotFoundMessage      = "note not found"
	NoteAlreadyExistsCode    = 2002
	NoteAlreadyExistsMessage = "note with given title is already present"

	ValidationErrorCode    = 6000
	ValidationErrorMessage = "validation error"
	InvalidBodyCode        = 6001
	InvalidBodyMessage     = "invalid request body"
)

type ErrorCode int

type ErrorStruct struct {
	ErrorCode ErrorCode `json:"error_code"`
	Message   string    `json:"message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode ErrorCode         `json:"error_code"`
	Message   string            `json:"message"`
	Errors    []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

type apiError struct {
	status  int
	code    ErrorCode
	message string
}

var (
	errInternal          = apiError{http.StatusInternalServerError, InternalErrorCode, InternalErrorMessage}
	errUserAlreadyExists = apiError{http.StatusBadRequest, UserAlreadyExistsCode, UserAlreadyExistsMessage}
	errUserNotFound      = apiError{http.StatusNotFound, UserNotFoundCode, UserNotFoundMessage}
	errInvalidSession    = apiError{http.StatusBadRequest, InvalidSessionCode, InvalidSessionMessage}
	errRateLimited       = apiError{http.StatusTooManyRequests, RateLimitedCode, RateLimitedMessage}
	errUnauthorized      = apiError{http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage}
	errNoteNotFound      = apiError{http.StatusNotFound, NoteNotFoundCode, NoteNotFoundMessage}
	errNoteAlreadyExists = apiError{http.StatusBadRequest, NoteAlreadyExistsCode, NoteAlreadyExistsMessage}
	errInvalidBody       = apiError{http.StatusBadRequest, InvalidBodyCode, InvalidBodyMessage}
)
