package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUnauthenticated
	KindForbidden
)

// Error is a domain failure that maps onto one HTTP status.
// Validation errors may carry per-field messages instead of a single Message.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" || len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return strings.Join(parts, "; ")
}

var (
	ErrSelfFollow       = &Error{Kind: KindValidation, Message: "You can't follow yourself."}
	ErrAlreadyFollowing = &Error{Kind: KindValidation, Message: "You are already following this user."}
	ErrNotFollowing     = &Error{Kind: KindValidation, Message: "You are not following this user."}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated, Message: "Authentication credentials were not provided."}
	ErrForbidden        = &Error{Kind: KindForbidden, Message: "You do not have permission to perform this action."}
)

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Field builds a validation error for a single input field.
func Field(field, message string) *Error {
	return &Error{Kind: KindValidation, Fields: map[string][]string{field: {message}}}
}

func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

// Status maps err onto an HTTP status code. Anything that is not an *Error is a 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
