package domain

import (
	"errors"
	"strings"
)

// ErrorKind classifies every failure a user operation can report.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindDuplicateEmail
	KindNotFound
	KindInvalidID
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindNotFound:
		return "not_found"
	case KindInvalidID:
		return "invalid_id"
	default:
		return "internal"
	}
}

type Error struct {
	Kind     ErrorKind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(messages []string) error {
	return &Error{Kind: KindValidation, Messages: messages}
}

func NewDuplicateEmailError(err error) error {
	return &Error{Kind: KindDuplicateEmail, Err: err}
}

func NewNotFoundError(err error) error {
	return &Error{Kind: KindNotFound, Err: err}
}

func NewInvalidIDError(err error) error {
	return &Error{Kind: KindInvalidID, Err: err}
}

func NewInternalError(err error) error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf reports the kind of err. Errors that carry no kind are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ValidationMessages returns the per-field messages of a validation error.
func ValidationMessages(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return e.Messages
	}
	return nil
}
