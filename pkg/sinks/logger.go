package sinks

// Logger defines the logging surface sinks rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// scopedLogger tags every entry with the sink that wrote it, so individual sinks only log
// what is specific to a delivery.
type scopedLogger struct {
	next Logger
	id   string
	typ  string
}

// scoped returns log tagged with the sink's identity. A nil log discards everything.
func scoped(log Logger, id, typ string) Logger {
	if log == nil {
		return discard{}
	}
	return scopedLogger{next: log, id: id, typ: typ}
}

func (l scopedLogger) tag(obj interface{}) map[string]any {
	fields := map[string]any{"sink_id": l.id, "sink_type": l.typ}
	switch v := obj.(type) {
	case nil:
	case map[string]any:
		for k, val := range v {
			fields[k] = val
		}
	default:
		fields["detail"] = v
	}
	return fields
}

func (l scopedLogger) InfoObj(msg, key string, obj interface{})  { l.next.InfoObj(msg, key, l.tag(obj)) }
func (l scopedLogger) DebugObj(msg, key string, obj interface{}) { l.next.DebugObj(msg, key, l.tag(obj)) }
func (l scopedLogger) WarnObj(msg, key string, obj interface{})  { l.next.WarnObj(msg, key, l.tag(obj)) }
func (l scopedLogger) ErrorObj(msg, key string, obj interface{}) { l.next.ErrorObj(msg, key, l.tag(obj)) }

type discard struct{}

func (discard) InfoObj(string, string, interface{})  {}
func (discard) DebugObj(string, string, interface{}) {}
func (discard) WarnObj(string, string, interface{})  {}
func (discard) ErrorObj(string, string, interface{}) {}
