package proxy

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of request failure in the external error contract.
type Code int

const (
	// CodeInvalidQuery: required query parameters absent or malformed for the
	// matched route.
	CodeInvalidQuery Code = iota + 1

	// CodeFetchFailed: the upstream body could not be fetched, parsed, or did
	// not match the expected shape.
	CodeFetchFailed

	// CodeNotFound: unroutable path.
	CodeNotFound

	// CodeRefererDenied: the referer check rejected the request.
	CodeRefererDenied
)

func (c Code) String() string {
	switch c {
	case CodeInvalidQuery:
		return "invalid_query"
	case CodeFetchFailed:
		return "fetch_failed"
	case CodeNotFound:
		return "not_found"
	case CodeRefererDenied:
		return "referer_denied"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// HTTPStatus returns the HTTP status code this error class is served with.
func (c Code) HTTPStatus() int {
	if c == CodeRefererDenied {
		return http.StatusForbidden
	}
	return http.StatusNotFound
}

// Error is the externally visible failure envelope shared by every failure
// path. Info carries raw error detail and is stripped outside debug mode.
type Error struct {
	Code Code   `json:"code"`
	Desc string `json:"desc"`
	Info string `json:"info,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Desc)
}

// Classify is the pipeline's terminal error boundary. It maps any failure
// coming out of the pipeline into an Error and never propagates further.
// Errors that are not already classified are treated as upstream fetch
// failures. Raw detail is only included when debug is set.
func Classify(err error, debug bool) *Error {
	var e *Error
	if errors.As(err, &e) {
		out := &Error{Code: e.Code, Desc: e.Desc}
		if debug {
			out.Info = e.Info
		}
		return out
	}

	out := &Error{Code: CodeFetchFailed, Desc: "could not fetch from instagram"}
	if debug {
		out.Info = err.Error()
	}
	return out
}
