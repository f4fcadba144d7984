package service

import (
	"errors"
	"net/http"
)

// Reason is the machine-readable failure taxonomy. Callers dispatch on
// it; the message is for humans only.
type Reason string

const (
	ReasonInvalidInput    Reason = "invalid_input"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	ReasonNotFound        Reason = "not_found"
	ReasonConflict        Reason = "conflict"
	ReasonInvalidState    Reason = "invalid_state"
)

// HTTPStatus maps the taxonomy to one uniform status-code policy across
// the offer, auction and like surfaces.
func (r Reason) HTTPStatus() int {
	switch r {
	case ReasonInvalidInput:
		return http.StatusBadRequest
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonForbidden:
		return http.StatusForbidden
	case ReasonNotFound:
		return http.StatusNotFound
	case ReasonConflict, ReasonInvalidState:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error is a structured service failure. A rejected action leaves the
// stores unmutated.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// AsServiceError unwraps err into an *Error if one is in the chain.
func AsServiceError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func invalidInput(msg string) *Error {
	return &Error{Reason: ReasonInvalidInput, Message: msg}
}

func unauthenticated(msg string) *Error {
	return &Error{Reason: ReasonUnauthenticated, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Reason: ReasonForbidden, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Reason: ReasonNotFound, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Reason: ReasonConflict, Message: msg}
}

func invalidState(msg string) *Error {
	return &Error{Reason: ReasonInvalidState, Message: msg}
}
