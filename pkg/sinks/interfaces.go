package sinks

import "context"

// Sink forwards outcome events to a downstream destination (webhook, SQS, SNS, Pub/Sub).
type Sink interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt Event) error
}
