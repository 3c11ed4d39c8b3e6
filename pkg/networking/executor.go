package networking

import (
	"context"
	"time"

	"github.com/samvad-hq/netreq/pkg/httpclient"
)

const defaultTimeout = 30 * time.Second

// Executor performs single-shot requests over an injected client and decodes the body
// into a caller-chosen type. It holds no per-call state and is safe for concurrent use.
type Executor struct {
	client          httpclient.Client
	decoder         Decoder
	log             Logger
	applyParameters bool
	detectType      bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithDecoder sets the default decoder. JSON is used otherwise.
func WithDecoder(d Decoder) Option {
	return func(e *Executor) {
		if d != nil {
			e.decoder = d
		}
	}
}

// WithLogger sets the logger that receives transport failures.
func WithLogger(log Logger) Option {
	return func(e *Executor) { e.log = ensureLogger(log) }
}

// WithParameterEncoding sends Request.Parameters as query values. Without it they are ignored.
func WithParameterEncoding() Option {
	return func(e *Executor) { e.applyParameters = true }
}

// WithContentTypeDetection picks the decoder from the response Content-Type when the request
// sets no Decoder. Unrecognised or missing types fall back to the default decoder.
func WithContentTypeDetection() Option {
	return func(e *Executor) { e.detectType = true }
}

// NewExecutor builds an Executor around client. A nil client gets a default resty client.
func NewExecutor(client httpclient.Client, opts ...Option) *Executor {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	e := &Executor{
		client:  client,
		decoder: JSON,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches req and calls onComplete exactly once with the outcome.
//
// A malformed URL is reported synchronously, before Execute returns, and no request is made.
// Every other outcome is delivered from a separate goroutine; callers needing a particular
// goroutine must hand the result off themselves. Cancelling ctx aborts the transfer and is
// reported as ErrRequestFailed.
func Execute[T any](ctx context.Context, e *Executor, req Request, onComplete func(Result[T])) {
	if onComplete == nil {
		onComplete = func(Result[T]) {}
	}
	if e == nil {
		e = NewExecutor(nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := parseURL(req.URL)
	if err != nil {
		onComplete(Result[T]{Err: ErrBadURL})
		return
	}

	call := httpclient.Call{
		Method:  req.method(),
		URL:     target.String(),
		Headers: req.Headers,
	}
	if e.applyParameters {
		call.Query = encodeParameters(req.Parameters)
	}

	go func() {
		onComplete(dispatch[T](ctx, e, call, req.Decoder))
	}()
}

// Submit is Execute with the outcome delivered on a channel. The channel receives exactly
// one value and is then closed.
func Submit[T any](ctx context.Context, e *Executor, req Request) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	Execute[T](ctx, e, req, func(res Result[T]) {
		ch <- res
		close(ch)
	})
	return ch
}

// Do runs the request and waits for its outcome.
func Do[T any](ctx context.Context, e *Executor, req Request) (T, error) {
	res := <-Submit[T](ctx, e, req)
	return res.Value, res.Err
}

func dispatch[T any](ctx context.Context, e *Executor, call httpclient.Call, override Decoder) Result[T] {
	resp, err := e.client.Do(ctx, call)
	if err != nil {
		e.log.ErrorObj("request failed", "request_error", map[string]any{
			"method": call.Method,
			"url":    call.URL,
			"error":  err.Error(),
		})
		return Result[T]{Err: ErrRequestFailed}
	}

	var body []byte
	if resp != nil {
		body = resp.Body()
	}
	if len(body) == 0 {
		return Result[T]{Err: ErrUnknown}
	}

	fallback := e.decoder
	if e.detectType && override == nil {
		if d, ok := DecoderForContentType(resp.Header().Get("Content-Type")); ok {
			fallback = d
		}
	}

	value, err := decode[T](body, override, fallback)
	if err != nil {
		return Result[T]{Err: ErrDecoding}
	}
	return Result[T]{Value: value}
}
