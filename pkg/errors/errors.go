// Package errors defines the error taxonomy shared by the search server.
// Every failure is one of the sentinels below, optionally wrapped in an
// AppError carrying a human-readable message; callers match with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidDocumentID = errors.New("invalid document id")
	ErrInvalidWord       = errors.New("invalid word")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrOutOfRange        = errors.New("out of range")
	ErrDocumentNotFound  = errors.New("document not found")
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// Kind returns a stable label for err, suitable for metric labels and CLI
// output. Unknown errors map to "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidDocumentID):
		return "invalid_document_id"
	case errors.Is(err, ErrInvalidWord):
		return "invalid_word"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrDocumentNotFound):
		return "document_not_found"
	default:
		return "internal"
	}
}
