package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Socket.IO v5 packet types.
type packetType int

const (
	packetConnect packetType = iota
	packetDisconnect
	packetEvent
	packetAck
	packetConnectError
	packetBinaryEvent
	packetBinaryAck
)

func (t packetType) String() string {
	switch t {
	case packetConnect:
		return "CONNECT"
	case packetDisconnect:
		return "DISCONNECT"
	case packetEvent:
		return "EVENT"
	case packetAck:
		return "ACK"
	case packetConnectError:
		return "CONNECT_ERROR"
	case packetBinaryEvent:
		return "BINARY_EVENT"
	case packetBinaryAck:
		return "BINARY_ACK"
	default:
		return "UNKNOWN"
	}
}

type packet struct {
	Type      packetType
	Namespace string
	ID        int
	HasID     bool
	Data      json.RawMessage
}

// encode renders the packet in the Socket.IO text format:
// <type>[<namespace>,][<id>][<json>]
func (p packet) encode() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(p.Type)))
	if p.Namespace != "" && p.Namespace != "/" {
		b.WriteString(p.Namespace)
		b.WriteByte(',')
	}
	if p.HasID {
		b.WriteString(strconv.Itoa(p.ID))
	}
	b.Write(p.Data)
	return b.String()
}

func decodePacket(s string) (packet, error) {
	if s == "" {
		return packet{}, fmt.Errorf("%w: empty socket packet", ErrMalformedPacket)
	}
	if s[0] < '0' || s[0] > '6' {
		return packet{}, fmt.Errorf("%w: unknown socket type %q", ErrMalformedPacket, s[0])
	}
	p := packet{Type: packetType(s[0] - '0'), Namespace: "/"}
	i := 1

	// Binary packets carry an attachment count we do not support beyond skipping.
	if p.Type == packetBinaryEvent || p.Type == packetBinaryAck {
		dash := strings.IndexByte(s[i:], '-')
		if dash < 0 {
			return packet{}, fmt.Errorf("%w: binary packet without attachment count", ErrMalformedPacket)
		}
		i += dash + 1
	}

	if i < len(s) && s[i] == '/' {
		comma := strings.IndexByte(s[i:], ',')
		if comma < 0 {
			p.Namespace = s[i:]
			i = len(s)
		} else {
			p.Namespace = s[i : i+comma]
			i += comma + 1
		}
	}

	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > start {
		id, err := strconv.Atoi(s[start:i])
		if err != nil {
			return packet{}, fmt.Errorf("%w: ack id: %v", ErrMalformedPacket, err)
		}
		p.ID, p.HasID = id, true
	}

	if i < len(s) {
		data := s[i:]
		if !json.Valid([]byte(data)) {
			return packet{}, fmt.Errorf("%w: invalid payload", ErrMalformedPacket)
		}
		p.Data = json.RawMessage(data)
	}
	return p, nil
}

// eventArgs splits an EVENT payload into its name and arguments.
func eventArgs(data json.RawMessage) (string, []json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil {
		return "", nil, fmt.Errorf("decode event: %w", err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", ErrMalformedPacket)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("decode event name: %w", err)
	}
	return name, args[1:], nil
}

// ServerError is a connect_error payload sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server rejected connection"
	}
	return "server rejected connection: " + e.Message
}

func connectErrorFrom(data json.RawMessage) error {
	var body struct {
		Message string `json:"message"`
	}
	if len(data) > 0 && json.Unmarshal(data, &body) == nil {
		return &ServerError{Message: body.Message}
	}
	// Older servers send a bare string.
	var msg string
	if len(data) > 0 && json.Unmarshal(data, &msg) == nil {
		return &ServerError{Message: msg}
	}
	return &ServerError{}
}
