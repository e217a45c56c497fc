package errors

import "errors"

// Codes shared between the domain and transport layers.
const (
	CodeInvalidInput   = "invalid_input"
	CodePredictorError = "predictor_error"
	CodeStorageError   = "storage_error"
	CodeInvalidToken   = "invalid_token"
	CodeAuthError      = "auth_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether any AppError in the chain carries code.
func IsCode(err error, code string) bool {
	return Code(err) == code
}

// Code returns the outermost AppError code, or "" for foreign errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
