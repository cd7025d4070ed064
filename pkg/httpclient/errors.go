package httpclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrMalformedEnvelope marks a 2xx body that is not a valid envelope.
	ErrMalformedEnvelope = errors.New("malformed response envelope")
	// ErrNoNavigator is returned by Download when the client has no Navigator.
	ErrNoNavigator = errors.New("no download navigator configured")
)

const maxBodySnippet = 512

// APIError is an application-level failure: the server answered with a
// non-success envelope code, or with a body that is not an envelope at all.
type APIError struct {
	Code     int
	Message  string
	URL      string
	Envelope *RawEnvelope
	// Err is set when the body could not be decoded as an envelope.
	Err error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

// StatusError is a transport-level failure: a non-2xx HTTP status.
type StatusError struct {
	StatusCode  int
	Status      string
	URL         string
	BodySnippet string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("http response status %d", e.StatusCode)
	if e.URL != "" {
		msg += " url: " + e.URL
	}
	if e.BodySnippet != "" {
		msg += ": " + e.BodySnippet
	}
	return msg
}

func newStatusError(resp *resty.Response) *StatusError {
	return &StatusError{
		StatusCode:  resp.StatusCode(),
		Status:      resp.Status(),
		URL:         requestURL(resp.Request),
		BodySnippet: readBodySnippet(resp.Body()),
	}
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return strings.TrimSpace(string(body))
}

func requestURL(req *resty.Request) string {
	if req == nil {
		return ""
	}
	if req.RawRequest != nil && req.RawRequest.URL != nil {
		return req.RawRequest.URL.String()
	}
	return req.URL
}
