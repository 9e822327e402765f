package proxy

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCodeHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidQuery, http.StatusNotFound},
		{CodeFetchFailed, http.StatusNotFound},
		{CodeNotFound, http.StatusNotFound},
		{CodeRefererDenied, http.StatusForbidden},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestClassifyPassesThroughClassifiedErrors(t *testing.T) {
	in := &Error{Code: CodeInvalidQuery, Desc: "bad query", Info: "raw detail"}

	out := Classify(in, false)
	if out.Code != CodeInvalidQuery || out.Desc != "bad query" {
		t.Errorf("Classify changed the error: %+v", out)
	}
	if out.Info != "" {
		t.Error("info must be stripped outside debug mode")
	}

	if out := Classify(in, true); out.Info != "raw detail" {
		t.Errorf("debug mode should keep info, got %q", out.Info)
	}
}

func TestClassifyWrappedError(t *testing.T) {
	inner := &Error{Code: CodeRefererDenied, Desc: "referer is blacklisted"}
	wrapped := fmt.Errorf("pipeline: %w", inner)

	out := Classify(wrapped, false)
	if out.Code != CodeRefererDenied {
		t.Errorf("Classify(%v).Code = %s, want referer_denied", wrapped, out.Code)
	}
}

func TestClassifyUnknownErrorIsFetchFailed(t *testing.T) {
	err := fmt.Errorf("connection reset by peer")

	out := Classify(err, false)
	if out.Code != CodeFetchFailed {
		t.Errorf("code = %s, want fetch_failed", out.Code)
	}
	if out.Info != "" {
		t.Error("info must be empty outside debug mode")
	}

	out = Classify(err, true)
	if out.Info != "connection reset by peer" {
		t.Errorf("debug info = %q", out.Info)
	}
}
