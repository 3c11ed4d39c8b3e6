package networking

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMethod is used when Request.Method is empty.
const DefaultMethod = http.MethodGet

// Request describes one call. It is built per call and never retained.
type Request struct {
	URL    string
	Method string
	// Parameters are accepted but only sent when the executor was built WithParameterEncoding.
	Parameters map[string]any
	Headers    map[string]string
	// Decoder overrides the executor's decoder for this call.
	Decoder Decoder
}

func (r Request) method() string {
	if r.Method == "" {
		return DefaultMethod
	}
	return r.Method
}

// parseURL accepts absolute URLs only; relative references and free text are rejected.
func parseURL(raw string) (*url.URL, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("url must have a scheme and host")
	}
	return u, nil
}

// encodeParameters flattens parameters into query values. Slices become repeated values.
func encodeParameters(params map[string]any) map[string][]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string][]string, len(params))
	for k, v := range params {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = parameterValues(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parameterValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{t}
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
