package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a RestyClient.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// HTTPClient replaces the underlying transport; tests use it to point at httptest servers.
	HTTPClient *http.Client
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// New creates a RestyClient from options.
func New(opts Options) *RestyClient {
	var c *resty.Client
	if opts.HTTPClient != nil {
		c = resty.NewWithClient(opts.HTTPClient)
	} else {
		c = resty.New()
	}
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	return &RestyClient{client: c}
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return New(Options{Timeout: timeout})
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Do performs the call with the given context. Headers are appended with Header.Add so
// repeated names are kept rather than overwritten.
func (r *RestyClient) Do(ctx context.Context, call Call) (Response, error) {
	req := r.client.R().SetContext(ctx)
	for k, v := range call.Headers {
		req.Header.Add(k, v)
	}
	for k, values := range call.Query {
		for _, v := range values {
			req.QueryParam.Add(k, v)
		}
	}

	resp, err := req.Execute(call.Method, call.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
