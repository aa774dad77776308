package socket

import "context"

// EventKind discriminates adapter events.
type EventKind int

const (
	// EventConnected reports that the dial completed.
	EventConnected EventKind = iota
	// EventDisconnected reports that the connection ended. Err carries the
	// failure cause, or nil after a clean close.
	EventDisconnected
	// EventMessage carries one inbound frame.
	EventMessage
)

// Event is one occurrence surfaced by an Adapter. Events are queued inside
// the adapter and drained by the socket's Tick.
type Event struct {
	Kind EventKind
	Data []byte
	Err  error
}

// Adapter is the transport under a Socket. Implementations queue inbound
// events internally; Poll must never block.
//
// Connect starts the dial and returns immediately; the result arrives later
// as an EventConnected or EventDisconnected. Send writes one frame and may
// be called from any goroutine.
type Adapter interface {
	Connect(ctx context.Context, url string) error
	Send(ctx context.Context, data []byte) error
	Close() error
	Poll() (Event, bool)
}
