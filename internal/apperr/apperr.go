package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into one of the fixed categories the HTTP
// boundary knows how to translate.
type Kind int

const (
	Validation Kind = iota
	Auth
	NotFound
	Conflict
	Server
)

// Error is the only error type store operations return. Message is safe to
// send to clients; Err holds the internal cause and never crosses the HTTP
// boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and message so wrapped copies compare equal to their
// catalog entry.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCause returns a copy carrying err as the internal cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

// The fixed catalog. Messages are the user-facing strings; handlers send
// them verbatim with the kind's status code.
var (
	ErrDBConn        = New(Server, "Error connecting to the database")
	ErrAccountInfo   = New(Server, "Error retrieving user information")
	ErrNoAccount     = New(NotFound, "No user was found with this email")
	ErrEmailTaken    = New(Conflict, "A user already exists with this email")
	ErrCreateAccount = New(Server, "Error creating user")
	ErrInvalidCreds  = New(Auth, "Invalid credentials")
	ErrServer        = New(Server, "There was an error processing this request")
	ErrAddItem       = New(Server, "There was an error adding this item of clothing to the database")
	ErrGetWardrobe   = New(Server, "There was an error retrieving the items for this user")
	ErrUpdateItem    = New(Server, "There was an error updating this item")
	ErrDeleteItem    = New(Server, "There was an error deleting this item")
	ErrNoItemFound   = New(NotFound, "Clothing item with this id does not exist")
)

// Undefined reports a missing required input.
func Undefined(what string) *Error {
	return New(Validation, fmt.Sprintf("%s must be defined", what))
}

// BadRequest reports a request that is missing information for an action.
func BadRequest(action string) *Error {
	return New(Validation, fmt.Sprintf("The request to %s does not contain all of the information it needs", action))
}

// From extracts the taxonomy error from err, falling back to ErrServer for
// anything unclassified.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return ErrServer.WithCause(err)
}
