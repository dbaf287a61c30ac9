package paper

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind classifies paper failures. Its value doubles as the text code
// reported to API clients.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
	KindNotImpl    ErrorKind = "not_implemented"
	// KindImage marks an image that could not be fetched, read or decoded.
	// Renders recover from it with a placeholder.
	KindImage ErrorKind = "image_unavailable"
)

// MsgGenerationFailed is the caller-facing message for fatal render failures.
const MsgGenerationFailed = "failed to generate question paper"

var kindCategories = map[ErrorKind]errorslib.Category{
	KindValidation: errorslib.CategoryValidation,
	KindNotFound:   errorslib.CategoryNotFound,
	KindTimeout:    errorslib.CategoryOperation,
	KindCanceled:   errorslib.CategoryOperation,
	KindNotImpl:    errorslib.CategoryOperation,
	KindImage:      errorslib.CategoryExternal,
	KindInternal:   errorslib.CategoryInternal,
}

// Error is a failure tagged with its kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new paper error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// AsGoError maps err into a go-errors error. Errors already carrying a
// go-errors value keep their own category and text code.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}
	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}
	kind, msg := classify(err)
	category, ok := kindCategories[kind]
	if !ok {
		category = errorslib.CategoryInternal
	}
	return errorslib.New(msg, category).WithTextCode(string(kind))
}

// KindFromError maps err to its paper error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}
	kind, _ := classify(err)
	return kind
}

// classify finds the kind and the caller-facing message for err. Context
// errors win over any kind found in the chain.
func classify(err error) (ErrorKind, string) {
	kind, msg := KindInternal, err.Error()

	var pe *Error
	var ge *errorslib.Error
	switch {
	case errors.As(err, &pe):
		kind = pe.Kind
		if pe.Msg != "" {
			msg = pe.Msg
		}
	case errors.As(err, &ge):
		kind = kindForCategory(ge)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	}
	return kind, msg
}

func kindForCategory(ge *errorslib.Error) ErrorKind {
	if category, ok := kindCategories[ErrorKind(ge.TextCode)]; ok && category == ge.Category {
		return ErrorKind(ge.TextCode)
	}
	switch ge.Category {
	case errorslib.CategoryValidation:
		return KindValidation
	case errorslib.CategoryNotFound:
		return KindNotFound
	}
	return KindInternal
}

// generationFailed wraps an unexpected render or persist failure into the
// single terminal error reported to callers.
func generationFailed(err error) *Error {
	return NewError(KindInternal, MsgGenerationFailed, err)
}
