package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/trip-planner/pkg/errors"
)

// HTTPError is a failed request as rendered to API consumers.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the domain error.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// domainError maps service error codes onto HTTP statuses. Malformed requests are 400,
// failed text generation is an upstream failure (502), and anything else is ours (500).
func domainError(err error) *HTTPError {
	switch code := apperrors.CodeOf(err); code {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeLLM:
		return NewHTTPError(http.StatusBadGateway, code, errMessage(err), err)
	case apperrors.CodeInvariantViolation:
		return NewHTTPError(http.StatusInternalServerError, code, "failed to assemble results", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return domainError(err)
}

// errorBody renders {"error":{"code","message","requestId"}}.
func errorBody(httpErr *HTTPError, requestID string) gin.H {
	message := httpErr.Message
	if message == "" {
		message = httpErr.Error()
	}
	body := gin.H{
		"code":    httpErr.Code,
		"message": message,
	}
	if requestID != "" {
		body["requestId"] = requestID
	}
	return gin.H{"error": body}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
