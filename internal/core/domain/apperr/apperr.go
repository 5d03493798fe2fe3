package apperr

import (
	"errors"
	"fmt"
)

// Error codes grouped by numeric range. The 2000s are reserved for the HTTP
// surface's auth vocabulary and are not raised by the recognition core.
const (
	CodeUnknown              = 1000
	CodeInvalidParameter     = 1001
	CodeMissingParameter     = 1002
	CodeInvalidRequestFormat = 1003
	CodeInternal             = 1004

	CodeUnauthorized      = 2000
	CodeInvalidAPIKey     = 2001
	CodeRateLimitExceeded = 2002
	CodePermissionDenied  = 2003
	CodeTokenExpired      = 2004

	CodeUnsupportedCaptchaType = 3000
	CodeInvalidImageFormat     = 3001
	CodeImageTooLarge          = 3002
	CodeImageTooSmall          = 3003
	CodeRecognitionFailed      = 3004
	CodeProcessingTimeout      = 3005
	CodeInvalidImageData       = 3006

	CodeDatabaseError        = 4000
	CodeCacheError           = 4001
	CodeNetworkError         = 4002
	CodeFileSystemError      = 4003
	CodeExternalServiceError = 4004
)

// Error is the single failure type surfaced by the recognizer. Every error
// leaving the service layer carries a stable code, a human message, a
// structured details map and, when wrapping, the original cause.
type Error struct {
	Code    int            `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail returns e after attaching a detail entry.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches cause to a new taxonomy error, preserving the original message
// in the details map so callers can reconstruct the failure programmatically.
func Wrap(code int, message string, cause error) *Error {
	e := &Error{Code: code, Message: message, Cause: cause}
	if cause != nil {
		e.WithDetail("cause", cause.Error())
	}
	return e
}

// From returns err as a taxonomy error, reclassifying anything unrecognized
// under CodeUnknown. A nil err returns nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Wrap(CodeUnknown, "unknown error", err)
}

// Code extracts the numeric code from err, or CodeUnknown for foreign errors.
func Code(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

func UnsupportedCaptchaType(requested string, known []string) *Error {
	return &Error{
		Code:    CodeUnsupportedCaptchaType,
		Message: fmt.Sprintf("unsupported captcha type: %s", requested),
		Details: map[string]any{
			"requested_type":  requested,
			"supported_types": known,
		},
	}
}

func InvalidImage(message string, cause error) *Error {
	return Wrap(CodeInvalidImageFormat, message, cause)
}

func InvalidImageData(message string, cause error) *Error {
	return Wrap(CodeInvalidImageData, message, cause)
}

func ImageTooLarge(size, max int64) *Error {
	return &Error{
		Code:    CodeImageTooLarge,
		Message: fmt.Sprintf("image size %d exceeds limit %d", size, max),
		Details: map[string]any{"actual_size": size, "max_size": max},
	}
}

func ImageTooSmall(size, min int64) *Error {
	return &Error{
		Code:    CodeImageTooSmall,
		Message: fmt.Sprintf("image size %d below minimum %d", size, min),
		Details: map[string]any{"actual_size": size, "min_size": min},
	}
}

func RecognitionFailed(message string) *Error {
	return New(CodeRecognitionFailed, message)
}

func ProcessingTimeout(timeout float64) *Error {
	return &Error{
		Code:    CodeProcessingTimeout,
		Message: fmt.Sprintf("processing timed out after %.1fs", timeout),
		Details: map[string]any{"timeout_seconds": timeout},
	}
}

func FileSystem(message string, cause error) *Error {
	return Wrap(CodeFileSystemError, message, cause)
}

func Network(message string, cause error) *Error {
	return Wrap(CodeNetworkError, message, cause)
}

func CacheFailure(message string, cause error) *Error {
	return Wrap(CodeCacheError, message, cause)
}

func MissingParameter(name string) *Error {
	return (&Error{
		Code:    CodeMissingParameter,
		Message: fmt.Sprintf("missing required parameter: %s", name),
	}).WithDetail("parameter", name)
}

func InvalidParameter(name string, value any) *Error {
	return &Error{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("invalid parameter: %s", name),
		Details: map[string]any{"parameter": name, "value": value},
	}
}
