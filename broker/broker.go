// Package broker defines the interface boundary to the message broker
// client and the latest-message bootstrap that runs against it.
//
// Connection handling, subscriptions, acknowledgement bookkeeping and
// delivery guarantees all belong to the concrete client behind these
// interfaces; this module only reads, writes and seeks.
package broker

import (
	"context"
	"time"
)

// Message is one record received from a topic.
type Message interface {
	// Data returns the raw payload.
	Data() []byte
	// Topic returns the fully qualified topic the message arrived on.
	Topic() string
	// EventTime returns the producer-side event timestamp.
	EventTime() time.Time
	// Properties returns the message's key-value properties.
	Properties() map[string]string
}

// Reader reads a topic forward without subscription state. It additionally
// supports time-based seeking and a pending-messages probe, which is all the
// latest-message bootstrap needs.
type Reader interface {
	// HasNext reports whether a message is available without blocking.
	HasNext() bool
	// Next blocks until the next message or context cancellation.
	Next(ctx context.Context) (Message, error)
	// SeekTime repositions the reader at the first message published at or
	// after t.
	SeekTime(t time.Time) error
}

// Consumer receives messages under a subscription and acknowledges them.
type Consumer interface {
	Receive(ctx context.Context) (Message, error)
	Ack(msg Message) error
}

// OutboundMessage is a payload handed to a Producer.
type OutboundMessage struct {
	Data       []byte
	Properties map[string]string
	EventTime  time.Time
}

// Producer publishes messages to the outbound topic.
type Producer interface {
	Send(ctx context.Context, msg OutboundMessage) error
	Flush() error
}
