package errors

import "errors"

// Codes shared between the domain packages and the HTTP layer.
const (
	CodeInvalidInput          = "invalid_input"
	CodeInvalidServiceKind    = "invalid_service_kind"
	CodeMalformedNumericField = "malformed_numeric_field"
	CodeCatalogUnavailable    = "catalog_unavailable"
	CodeNotFound              = "not_found"
	CodeSourceError           = "source_error"
	CodeIdentifyError         = "identify_error"
	CodeGeocodeError          = "geocode_error"
	CodeNoMatch               = "no_match"
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
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether any AppError in the chain carries code.
func IsCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// CodeOf returns the outermost AppError code, or "" for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
