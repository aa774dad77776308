package socket

import "fmt"

// State is the connection lifecycle of a Socket.
//
// Valid transitions:
//
//	Disconnected -> Connecting
//	Connecting   -> Connected | Closing | Disconnected
//	Connected    -> Closing | Disconnected
//	Closing      -> Disconnected
type State int

const (
	// Disconnected means no connection exists. The initial and terminal state.
	Disconnected State = iota
	// Connecting means a dial is in flight.
	Connecting
	// Connected means the socket is established and requests may be sent.
	Connected
	// Closing means a deliberate close was requested and is completing.
	Closing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// canTransition reports whether moving from one state to another is legal.
func canTransition(from, to State) bool {
	switch from {
	case Disconnected:
		return to == Connecting
	case Connecting:
		return to == Connected || to == Closing || to == Disconnected
	case Connected:
		return to == Closing || to == Disconnected
	case Closing:
		return to == Disconnected
	default:
		return false
	}
}
