package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an HTTP response.
type Kind int

const (
	KindSuccess Kind = iota
	KindUnauthorized
	KindServerError
	KindOtherError
	KindParseError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindUnauthorized:
		return "unauthorized"
	case KindServerError:
		return "server_error"
	case KindOtherError:
		return "other_error"
	case KindParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one call.
type Outcome struct {
	Kind Kind

	// Code and Message are the HTTP status code and reason phrase.
	Code    int
	Message string

	// Body is the decoded JSON body, set for KindSuccess.
	Body any

	// Raw is the undecoded response body.
	Raw []byte

	// ParseErr is the JSON decoding error, set for KindParseError.
	ParseErr error
}

// OK reports whether the outcome is a parsed success.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Err converts a non-success outcome into an error. It returns nil for
// KindSuccess.
func (o Outcome) Err() error {
	switch o.Kind {
	case KindSuccess:
		return nil
	case KindParseError:
		return &ParseError{Raw: o.Raw, Err: o.ParseErr}
	default:
		return &HTTPError{Code: o.Code, Message: o.Message}
	}
}

// classify maps a status code and body onto an Outcome.
func classify(code int, message string, raw []byte) Outcome {
	out := Outcome{Code: code, Message: message, Raw: raw}
	switch {
	case code == http.StatusOK:
		body, err := decodeJSON(raw)
		if err != nil {
			out.Kind = KindParseError
			out.ParseErr = err
			return out
		}
		out.Kind = KindSuccess
		out.Body = body
	case code == http.StatusUnauthorized:
		out.Kind = KindUnauthorized
	case code >= 500 && code <= 599:
		out.Kind = KindServerError
	default:
		out.Kind = KindOtherError
	}
	return out
}

// ErrUnauthorized matches HTTPError values with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrServerError matches HTTPError values with a 5xx status.
var ErrServerError = errors.New("internal server error")

// HTTPError is a non-success HTTP status.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: error code: %d", e.Code)
	}
	return fmt.Sprintf("request failed: error code: %d, error message: %s", e.Code, e.Message)
}

// Unwrap exposes ErrUnauthorized or ErrServerError for errors.Is.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Code >= 500 && e.Code <= 599:
		return ErrServerError
	}
	return nil
}

// ParseError is a 200 response whose body is not valid JSON.
type ParseError struct {
	Raw []byte
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("couldn't parse JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NetworkError is a failure below HTTP: refused connection, TLS, timeout.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}
