// errors/errors.go
package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type ErrorType string

const (
	ErrorTypeData            ErrorType = "DataError"
	ErrorTypeLabeling        ErrorType = "LabelingError"
	ErrorTypeEncoding        ErrorType = "EncodingError"
	ErrorTypeArtifact        ErrorType = "ArtifactError"
	ErrorTypeInputValidation ErrorType = "InputValidationError"
	ErrorTypeModelNotLoaded  ErrorType = "ModelNotLoaded"
)

// Sentinels are carried as the cause of a CommonError so callers can match
// them with errors.Is regardless of the wrapping message.
var (
	ErrEmptyDataset     = pkgerrors.New("empty dataset")
	ErrUnknownLabel     = pkgerrors.New("unknown label")
	ErrOutOfRange       = pkgerrors.New("code out of range")
	ErrInvalidInput     = pkgerrors.New("invalid input")
	ErrModelNotLoaded   = pkgerrors.New("model not loaded")
	ErrArtifactMismatch = pkgerrors.New("artifact mismatch")
)

type QualityError interface {
	ErrorType() ErrorType
	Message() string
	IsErrorType(errorType ErrorType) bool
	Error() string
	HTTPStatus() int
	Unwrap() error
}

type CommonError struct {
	errorType ErrorType
	message   string
	cause     error
}

func (e CommonError) ErrorType() ErrorType {
	return e.errorType
}

func (e CommonError) Message() string {
	return e.message
}

func (e CommonError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.cause)
}

func (e CommonError) Unwrap() error {
	return e.cause
}

func (e CommonError) IsErrorType(errorType ErrorType) bool {
	return errorType == e.errorType
}

func (e CommonError) HTTPStatus() int {
	return errorTypeToCode(e.errorType)
}

func New(errorType ErrorType, cause error, format string, args ...interface{}) CommonError {
	return CommonError{
		errorType: errorType,
		message:   fmt.Sprintf(format, args...),
		cause:     cause,
	}
}

// TypeOf walks the chain and returns the type of the first QualityError found.
func TypeOf(err error) (ErrorType, bool) {
	var qe QualityError
	if pkgerrors.As(err, &qe) {
		return qe.ErrorType(), true
	}
	return "", false
}

// HTTPStatusOf maps any error to a response code; untyped errors are 500.
func HTTPStatusOf(err error) int {
	var qe QualityError
	if pkgerrors.As(err, &qe) {
		return qe.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func errorTypeToCode(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeInputValidation:
		return http.StatusBadRequest
	case ErrorTypeModelNotLoaded:
		return http.StatusServiceUnavailable
	case ErrorTypeData, ErrorTypeLabeling, ErrorTypeEncoding, ErrorTypeArtifact:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
