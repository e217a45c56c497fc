package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/solar-dashboard/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
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

// Unwrap exposes the cause for errors.Is/As.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type errorMapping struct {
	status int
	code   string
}

// appErrorMappings translates domain codes to transport status and code.
var appErrorMappings = map[string]errorMapping{
	apperrors.CodeInvalidInput:   {status: http.StatusBadRequest, code: "invalid_request"},
	apperrors.CodePredictorError: {status: http.StatusBadGateway, code: "prediction_failed"},
	apperrors.CodeStorageError:   {status: http.StatusInternalServerError, code: "storage_failed"},
	apperrors.CodeInvalidToken:   {status: http.StatusForbidden, code: "invalid_token"},
}

// fromAppError maps domain failures; unknown errors become opaque 500s.
func fromAppError(err error) *HTTPError {
	if mapping, ok := appErrorMappings[apperrors.Code(err)]; ok {
		return NewHTTPError(mapping.status, mapping.code, errMessage(err), err)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromAppError(err)
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
