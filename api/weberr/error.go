package weberr

import (
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{Error: msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

func Forbidden(err error, opts ...Opt) error {
	return NewError(
		err,
		"you do not have permission to access this resource",
		http.StatusForbidden,
		opts...,
	)
}

func Conflict(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource conflicts with an existing one",
		http.StatusConflict,
		opts...,
	)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(
		err,
		"too many attempts, retry later",
		http.StatusTooManyRequests,
		opts...,
	)
}

type fieldMessager interface {
	FieldMessages() map[string]string
}

// Invalid reports a payload that failed validation. Per field messages are
// included in the body when err carries them.
func Invalid(err error, opts ...Opt) error {
	er := ErrorResponse{Error: "data validation error"}

	var fm fieldMessager
	if errors.As(err, &fm) {
		er.Fields = fm.FieldMessages()
		opts = append(opts, WithFields(map[string]any{"invalid": er.Fields}))
	} else {
		er.Error = err.Error()
	}

	opts = append(opts, WithResponse(&er, http.StatusBadRequest))
	return Wrap(&RequestError{Err: err}, opts...)
}
