package weberr

import "errors"

// Opt decorates an error with data the Errors middleware knows how to use.
type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

// WithResponse attaches the body and status sent to the client.
func WithResponse(body any, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

// WithFields attaches extra log fields.
func WithFields(fields map[string]any) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

// Response returns the outermost response attached to err.
func Response(err error) (body any, status int, ok bool) {
	var re *responseError
	if errors.As(err, &re) {
		return re.body, re.status, true
	}
	return nil, 0, false
}

// Fields merges every set of log fields attached along the chain of err.
func Fields(err error) (map[string]any, bool) {
	var out map[string]any
	for err != nil {
		var fe *fieldsError
		if !errors.As(err, &fe) {
			break
		}
		if out == nil {
			out = make(map[string]any)
		}
		for k, v := range fe.fields {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
		err = fe.error
	}
	return out, out != nil
}

type responseError struct {
	error
	body   any
	status int
}

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]any
}

func (e *fieldsError) Unwrap() error { return e.error }
