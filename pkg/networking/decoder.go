package networking

import (
	"encoding/json"
	"fmt"
	"mime"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoder turns a raw response body into v, which is always a non-nil pointer.
type Decoder interface {
	Decode(data []byte, v any) error
}

// DecoderFunc adapts a plain unmarshal function to Decoder.
type DecoderFunc func(data []byte, v any) error

func (f DecoderFunc) Decode(data []byte, v any) error { return f(data, v) }

// BodyUnmarshaler is implemented by target types that decode themselves, either as T or
// through *T. It takes precedence over the Content-Type and the executor's default decoder,
// but not over Request.Decoder.
type BodyUnmarshaler interface {
	UnmarshalBody(data []byte) error
}

// Built-in decoders.
var (
	JSON Decoder = DecoderFunc(json.Unmarshal)
	YAML Decoder = DecoderFunc(yaml.Unmarshal)
	XML  Decoder = DecoderFunc(decodeXML)
)

// DecoderFor resolves a decoder by name (json, yaml/yml, xml).
func DecoderFor(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "xml":
		return XML, nil
	default:
		return nil, fmt.Errorf("unsupported decoder %q", name)
	}
}

// DecoderForContentType maps a Content-Type header value to a built-in decoder.
// Structured suffixes (+json, +yaml, +xml) are recognised.
func DecoderForContentType(contentType string) (Decoder, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return JSON, true
	case mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml" ||
		mt == "text/x-yaml" || strings.HasSuffix(mt, "+yaml"):
		return YAML, true
	case mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml"):
		return XML, true
	}
	return nil, false
}

// decode fills a fresh T from body. Panics inside decoders are reported as errors.
func decode[T any](body []byte, override, fallback Decoder) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, fmt.Errorf("decoder panic: %v", r)
		}
	}()

	if override != nil {
		err = override.Decode(body, &value)
		return value, err
	}
	if u, ok := any(&value).(BodyUnmarshaler); ok {
		err = u.UnmarshalBody(body)
		return value, err
	}
	if fresh, u, ok := newUnmarshaler[T](); ok {
		if err = u.UnmarshalBody(body); err != nil {
			return value, err
		}
		return fresh, nil
	}
	err = fallback.Decode(body, &value)
	return value, err
}

// newUnmarshaler allocates the pointee when T is a pointer whose element implements
// BodyUnmarshaler through that pointer.
func newUnmarshaler[T any]() (T, BodyUnmarshaler, bool) {
	var zero T
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Pointer {
		return zero, nil, false
	}
	ptr := reflect.New(rt.Elem()).Interface()
	u, ok := ptr.(BodyUnmarshaler)
	if !ok {
		return zero, nil, false
	}
	return ptr.(T), u, true
}
