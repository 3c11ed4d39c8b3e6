package sinks

import "time"

// Event is the payload sent downstream for every completed request.
type Event struct {
	URL         string    `json:"url"`
	Method      string    `json:"method"`
	Outcome     string    `json:"outcome"`
	DurationMs  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEvent constructs an Event stamped with the current time.
func NewEvent(url, method, outcome string, elapsed time.Duration) Event {
	return Event{
		URL:         url,
		Method:      method,
		Outcome:     outcome,
		DurationMs:  elapsed.Milliseconds(),
		CompletedAt: time.Now().UTC(),
	}
}

// attributes are attached as message attributes by queue-style sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"outcome": e.Outcome,
		"method":  e.Method,
	}
}
