package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorType represents different types of errors a cloud API call can produce
type ErrorType string

const (
	ErrorTypeThrottling ErrorType = "throttling"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeServer     ErrorType = "server_error"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a classified API error
type Error struct {
	Type    ErrorType
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var codeTypes = map[string]ErrorType{
	"Throttling":            ErrorTypeThrottling,
	"ThrottlingException":   ErrorTypeThrottling,
	"RequestLimitExceeded":  ErrorTypeThrottling,
	"AuthFailure":           ErrorTypeAuth,
	"UnauthorizedOperation": ErrorTypeAuth,
	"AccessDenied":          ErrorTypeAuth,
	"InvalidClientTokenId":  ErrorTypeAuth,
	"ExpiredToken":          ErrorTypeAuth,
	"SignatureDoesNotMatch": ErrorTypeAuth,
	"ValidationError":       ErrorTypeValidation,
	"InvalidParameterValue": ErrorTypeValidation,
	"MissingParameter":      ErrorTypeValidation,
	"NoSuchEntity":          ErrorTypeNotFound,
	"ServiceFailure":        ErrorTypeServer,
	"InternalError":         ErrorTypeServer,
	"Unavailable":           ErrorTypeServer,
}

// Classify maps an SDK error to an ErrorType. API errors are matched on
// their error code; anything else is unknown. The result is for display
// and logging; retry decisions do not depend on it.
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if t, ok := codeTypes[apiErr.ErrorCode()]; ok {
			return t
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return ErrorTypeServer
		}
		if strings.HasSuffix(apiErr.ErrorCode(), ".NotFound") {
			return ErrorTypeNotFound
		}
		return ErrorTypeUnknown
	}

	return ErrorTypeUnknown
}

// Wrap classifies err and returns it as an *Error, keeping err reachable
// through errors.Unwrap. A nil err yields nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	e := &Error{
		Type:    Classify(err),
		Message: err.Error(),
		Err:     err,
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.ErrorCode()
		e.Message = apiErr.ErrorMessage()
	}

	return e
}

// Code returns the API error code carried by err, or "" when err is not an
// API error.
func Code(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
