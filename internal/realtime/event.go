package realtime

import "fmt"

// EventKind identifies which lifecycle or server event occurred.
type EventKind int

const (
	// EventConnect fires once the namespace handshake succeeds.
	EventConnect EventKind = iota + 1
	// EventDisconnect fires when an established session ends.
	EventDisconnect
	// EventConnectError fires when the session could not be established.
	EventConnectError
	// EventSIDUpdate carries a server-pushed identifier change.
	EventSIDUpdate
)

// String returns the Socket.IO event name.
func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventConnectError:
		return "connect_error"
	case EventSIDUpdate:
		return "sid-update"
	default:
		return "unknown"
	}
}

// Disconnect reasons, named after the Socket.IO client's.
const (
	ReasonServerDisconnect = "io server disconnect"
	ReasonTransportClose   = "transport close"
	ReasonTransportError   = "transport error"
	ReasonPingTimeout      = "ping timeout"
)

// Event is a single notification from a Conn.
type Event struct {
	Kind EventKind
	// ID is the session identifier for EventConnect and EventSIDUpdate.
	ID string
	// Reason explains EventDisconnect.
	Reason string
	// Err describes EventConnectError.
	Err error
}

func (e Event) String() string {
	switch e.Kind {
	case EventConnect, EventSIDUpdate:
		return fmt.Sprintf("%s(%s)", e.Kind, e.ID)
	case EventDisconnect:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Reason)
	case EventConnectError:
		return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}
