package networking

// Result is the outcome of a single request: a decoded value or a classified error.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the request produced a value.
func (r Result[T]) OK() bool { return r.Err == nil }

// Kind returns the error kind, or "" on success.
func (r Result[T]) Kind() ErrorKind { return KindOf(r.Err) }
