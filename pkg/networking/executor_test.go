package networking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/netreq/pkg/httpclient"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// fakeResponse lets us stub the httpclient.Response interface.
type fakeResponse struct {
	body       []byte
	statusCode int
	header     http.Header
}

func (f fakeResponse) Body() []byte        { return f.body }
func (f fakeResponse) StatusCode() int     { return f.statusCode }
func (f fakeResponse) Header() http.Header { return f.header }

// fakeClient returns a canned response or error and records calls.
type fakeClient struct {
	mu    sync.Mutex
	resp  httpclient.Response
	err   error
	calls []httpclient.Call
}

func (f *fakeClient) Do(_ context.Context, call httpclient.Call) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingLogger captures ErrorObj calls.
type recordingLogger struct {
	noopLogger
	mu     sync.Mutex
	errors []map[string]any
}

func (r *recordingLogger) ErrorObj(_ string, _ string, obj interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := obj.(map[string]any); ok {
		r.errors = append(r.errors, m)
	}
}

// collect runs Execute and waits for the callback, failing if it is invoked more than once.
func collect[T any](t *testing.T, e *Executor, req Request) Result[T] {
	t.Helper()

	var calls atomic.Int32
	done := make(chan Result[T], 2)
	Execute[T](context.Background(), e, req, func(res Result[T]) {
		calls.Add(1)
		done <- res
	})

	var res Result[T]
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("onComplete was never invoked")
	}

	time.Sleep(20 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("onComplete invoked %d times, want 1", n)
	}
	return res
}

func TestExecuteBadURLIsSynchronousAndMakesNoCall(t *testing.T) {
	client := &fakeClient{}
	exec := NewExecutor(client)

	for _, raw := range []string{"not a url", "", "/relative/path", "example.com/no-scheme", "http://"} {
		called := false
		var got Result[item]
		Execute[item](context.Background(), exec, Request{URL: raw}, func(res Result[item]) {
			called = true
			got = res
		})
		if !called {
			t.Fatalf("%q: expected synchronous callback", raw)
		}
		if !errors.Is(got.Err, ErrBadURL) {
			t.Fatalf("%q: expected ErrBadURL, got %v", raw, got.Err)
		}
	}
	if n := client.callCount(); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
}

func TestExecuteTransportErrorIsRequestFailedAndLogged(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	log := &recordingLogger{}
	exec := NewExecutor(client, WithLogger(log))

	res := collect[item](t, exec, Request{URL: "https://example.com/items/1"})
	if !errors.Is(res.Err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", res.Err)
	}
	if res.Err.Error() != "request failed" {
		t.Fatalf("error leaked detail: %q", res.Err.Error())
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.errors) != 1 {
		t.Fatalf("expected one error log, got %d", len(log.errors))
	}
	if log.errors[0]["error"] != "connection refused" {
		t.Fatalf("expected transport error text in log, got %#v", log.errors[0])
	}
}

func TestExecuteEmptyBodyIsUnknown(t *testing.T) {
	for name, resp := range map[string]httpclient.Response{
		"nil response": nil,
		"empty body":   fakeResponse{statusCode: http.StatusNoContent},
	} {
		t.Run(name, func(t *testing.T) {
			exec := NewExecutor(&fakeClient{resp: resp})
			res := collect[item](t, exec, Request{URL: "https://example.com"})
			if !errors.Is(res.Err, ErrUnknown) {
				t.Fatalf("expected ErrUnknown, got %v", res.Err)
			}
		})
	}
}

func TestExecuteDecodesIntoRequestedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"id":1,"name":"a"}`))
		case "/bad":
			_, _ = w.Write([]byte(`{"id":"x"}`))
		}
	}))
	defer srv.Close()

	exec := NewExecutor(httpclient.New(httpclient.Options{HTTPClient: srv.Client()}))

	res := collect[item](t, exec, Request{URL: srv.URL + "/ok"})
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Value != (item{ID: 1, Name: "a"}) {
		t.Fatalf("unexpected value %#v", res.Value)
	}

	res = collect[item](t, exec, Request{URL: srv.URL + "/bad"})
	if !errors.Is(res.Err, ErrDecoding) {
		t.Fatalf("expected ErrDecoding, got %v", res.Err)
	}
	if res.Kind() != KindDecoding {
		t.Fatalf("expected decoding kind, got %q", res.Kind())
	}
}

func TestExecuteSendsMethodAndHeadersVerbatim(t *testing.T) {
	client := &fakeClient{resp: fakeResponse{body: []byte(`{}`), statusCode: http.StatusOK}}
	exec := NewExecutor(client)

	collect[item](t, exec, Request{
		URL:        "https://example.com/a?b=c",
		Method:     "delete",
		Parameters: map[string]any{"ignored": true},
		Headers:    map[string]string{"X-One": "1"},
	})

	call := client.calls[0]
	if call.Method != "delete" {
		t.Fatalf("method was rewritten: %q", call.Method)
	}
	if call.URL != "https://example.com/a?b=c" {
		t.Fatalf("unexpected url %q", call.URL)
	}
	if call.Headers["X-One"] != "1" {
		t.Fatalf("header missing: %#v", call.Headers)
	}
	if call.Query != nil {
		t.Fatalf("parameters must be ignored by default, got %#v", call.Query)
	}
}

func TestExecuteDefaultsToGET(t *testing.T) {
	client := &fakeClient{resp: fakeResponse{body: []byte(`{}`)}}
	collect[item](t, NewExecutor(client), Request{URL: "https://example.com"})
	if client.calls[0].Method != http.MethodGet {
		t.Fatalf("expected GET, got %q", client.calls[0].Method)
	}
}

func TestExecuteWithParameterEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || len(q["tag"]) != 2 || q.Get("keep") != "1" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(`{"id":2,"name":"b"}`))
	}))
	defer srv.Close()

	exec := NewExecutor(httpclient.New(httpclient.Options{HTTPClient: srv.Client()}), WithParameterEncoding())
	got, err := Do[item](context.Background(), exec, Request{
		URL:        srv.URL + "/?keep=1",
		Parameters: map[string]any{"page": 2, "tag": []string{"x", "y"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.ID != 2 {
		t.Fatalf("unexpected value %#v", got)
	}
}

func TestSubmitDeliversOnceAndCloses(t *testing.T) {
	exec := NewExecutor(&fakeClient{resp: fakeResponse{body: []byte(`{"id":3,"name":"c"}`)}})

	ch := Submit[item](context.Background(), exec, Request{URL: "https://example.com"})
	res, ok := <-ch
	if !ok || !res.OK() || res.Value.ID != 3 {
		t.Fatalf("unexpected first receive: %#v ok=%v", res, ok)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed after one result")
	}
}

func TestDoCancelledContextIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	exec := NewExecutor(httpclient.New(httpclient.Options{HTTPClient: srv.Client()}))
	if _, err := Do[item](ctx, exec, Request{URL: srv.URL}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestExecuteRequestDecoderOverride(t *testing.T) {
	exec := NewExecutor(&fakeClient{resp: fakeResponse{body: []byte("id: 4\nname: d\n")}})

	got, err := Do[map[string]any](context.Background(), exec, Request{URL: "https://example.com", Decoder: YAML})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got["name"] != "d" {
		t.Fatalf("unexpected value %#v", got)
	}

	if _, err := Do[map[string]any](context.Background(), exec, Request{URL: "https://example.com"}); !errors.Is(err, ErrDecoding) {
		t.Fatalf("yaml body through default json decoder should fail, got %v", err)
	}
}

func TestExecuteConcurrentCallsEachCompleteOnce(t *testing.T) {
	exec := NewExecutor(&fakeClient{resp: fakeResponse{body: []byte(`{"id":1,"name":"a"}`)}})

	const n = 32
	var wg sync.WaitGroup
	var delivered atomic.Int32
	wg.Add(n)
	for i := 0; i < n; i++ {
		Execute[item](context.Background(), exec, Request{URL: "https://example.com"}, func(res Result[item]) {
			defer wg.Done()
			if res.OK() {
				delivered.Add(1)
			}
		})
	}
	wg.Wait()
	if got := delivered.Load(); got != n {
		t.Fatalf("expected %d successful deliveries, got %d", n, got)
	}
}

func TestExecutorContentTypeDetection(t *testing.T) {
	yamlBody := fakeResponse{
		body:   []byte("id: 3\nname: c\n"),
		header: http.Header{"Content-Type": []string{"application/yaml; charset=utf-8"}},
	}

	detecting := NewExecutor(&fakeClient{resp: yamlBody}, WithContentTypeDetection())
	res := collect[item](t, detecting, Request{URL: "https://example.com/item"})
	if !res.OK() || res.Value.ID != 3 || res.Value.Name != "c" {
		t.Fatalf("expected yaml decode from content type, got %#v (%v)", res.Value, res.Err)
	}

	res = collect[item](t, detecting, Request{URL: "https://example.com/item", Decoder: JSON})
	if !errors.Is(res.Err, ErrDecoding) {
		t.Fatalf("request decoder must win over content type, got %v", res.Err)
	}

	plain := NewExecutor(&fakeClient{resp: yamlBody})
	res = collect[item](t, plain, Request{URL: "https://example.com/item"})
	if !errors.Is(res.Err, ErrDecoding) {
		t.Fatalf("without detection the default json decoder applies, got %v", res.Err)
	}

	unknownType := fakeResponse{
		body:   []byte(`{"id":4,"name":"d"}`),
		header: http.Header{"Content-Type": []string{"text/plain"}},
	}
	res = collect[item](t, NewExecutor(&fakeClient{resp: unknownType}, WithContentTypeDetection()), Request{URL: "https://example.com/item"})
	if !res.OK() || res.Value.ID != 4 {
		t.Fatalf("unrecognised content type should fall back to default, got %#v (%v)", res.Value, res.Err)
	}
}

func TestDoPointerPageMetaTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>T</title></head></html>`))
	}))
	defer srv.Close()

	e := NewExecutor(httpclient.NewRestyClient(2 * time.Second))
	pm, err := Do[*PageMeta](context.Background(), e, Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Do[*PageMeta]: %v", err)
	}
	if pm == nil || pm.Title != "T" {
		t.Fatalf("unexpected page meta %#v", pm)
	}
}
