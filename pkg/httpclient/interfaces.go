package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Call describes a single outbound request. Method and URL are passed through untouched.
type Call struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string][]string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, call Call) (Response, error)
}
