package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports invalid user input. It is raised before any call to the upstream API.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewInputError is a ValidationError carrying a single message, ex: an invalid identifier in the URL.
func NewInputError(msg string) error {
	return &ValidationError{Err: errors.New(msg)}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// FieldMap flattens the field errors, keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	flds := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// StatusError is implemented by errors carrying the HTTP status of a failed upstream call.
type StatusError interface {
	error
	StatusCode() int
}

// StatusCode returns the HTTP status carried by err, 0 when there is none.
func StatusCode(err error) int {
	if se, ok := errors.Cause(err).(StatusError); ok {
		return se.StatusCode()
	}
	return 0
}
