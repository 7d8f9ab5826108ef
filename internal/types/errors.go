package types

import "fmt"

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Upload pipeline errors
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrNoDataFound       ErrorCode = "NO_DATA_FOUND"
	ErrTransportFailure  ErrorCode = "TRANSPORT_FAILURE"
	ErrPayloadEncoding   ErrorCode = "PAYLOAD_ENCODING"

	// Boundary errors
	ErrIPC           ErrorCode = "IPC_ERROR"
	ErrConfiguration ErrorCode = "CONFIG_ERROR"
	ErrJournal       ErrorCode = "JOURNAL_ERROR"

	// System errors
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// UploadError represents an error raised by the stats upload pipeline
type UploadError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *UploadError) Unwrap() error {
	return e.Err
}

// NewUploadError creates a new UploadError
func NewUploadError(code ErrorCode, message string) *UploadError {
	return &UploadError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error in an UploadError
func WrapError(code ErrorCode, message string, err error) *UploadError {
	return &UploadError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsUploadError checks if an error is an UploadError with a specific code
func IsUploadError(err error, code ErrorCode) bool {
	var uploadErr *UploadError
	if err == nil {
		return false
	}
	if ok := As(err, &uploadErr); !ok {
		return false
	}
	return uploadErr.Code == code
}

// As is a helper function to safely type assert an error to an UploadError
func As(err error, target **UploadError) bool {
	if target == nil {
		return false
	}
	if uploadErr, ok := err.(*UploadError); ok {
		*target = uploadErr
		return true
	}
	return false
}
