package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error so callers branch on the failure
// class instead of inferring it from status codes.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindInvalidRequest Kind = "invalid_request"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error
func New(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func InvalidRequest(message string) *Error {
	return New(KindInvalidRequest, message, nil)
}

func Conflict(message string) *Error {
	return New(KindConflict, message, nil)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

// Respond writes err to the gin context, mapping unknown errors to an
// internal error so no failure path escapes unclassified.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = Internal("internal server error", err)
	}
	c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message, "kind": appErr.Kind})
}
