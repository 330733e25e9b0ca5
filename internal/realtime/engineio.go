package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Engine.IO v4 packet types as they appear on the wire.
type enginePacketType byte

const (
	engineOpen    enginePacketType = '0'
	engineClose   enginePacketType = '1'
	enginePing    enginePacketType = '2'
	enginePong    enginePacketType = '3'
	engineMessage enginePacketType = '4'
	engineUpgrade enginePacketType = '5'
	engineNoop    enginePacketType = '6'
)

const engineProtocol = "4"

var (
	// ErrMalformedPacket is returned for frames that do not parse.
	ErrMalformedPacket = errors.New("malformed packet")
	// ErrTransportClosed is reported when the server closes the engine session.
	ErrTransportClosed = errors.New("transport closed by server")
)

type enginePacket struct {
	Type enginePacketType
	Data string
}

func decodeEnginePacket(msg []byte) (enginePacket, error) {
	if len(msg) == 0 {
		return enginePacket{}, fmt.Errorf("%w: empty frame", ErrMalformedPacket)
	}
	t := enginePacketType(msg[0])
	if t < engineOpen || t > engineNoop {
		return enginePacket{}, fmt.Errorf("%w: unknown engine type %q", ErrMalformedPacket, msg[0])
	}
	return enginePacket{Type: t, Data: string(msg[1:])}, nil
}

func (p enginePacket) encode() []byte {
	out := make([]byte, 0, len(p.Data)+1)
	out = append(out, byte(p.Type))
	return append(out, p.Data...)
}

// handshake is the payload of the Engine.IO open packet.
type handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

func parseHandshake(p enginePacket) (handshake, error) {
	if p.Type != engineOpen {
		return handshake{}, fmt.Errorf("%w: expected open packet, got type %q", ErrMalformedPacket, byte(p.Type))
	}
	var hs handshake
	if err := json.Unmarshal([]byte(p.Data), &hs); err != nil {
		return handshake{}, fmt.Errorf("decode handshake: %w", err)
	}
	return hs, nil
}

// readWindow is how long the server may stay silent before the session is
// considered dead. Zero means no deadline.
func (h handshake) readWindow() time.Duration {
	total := h.PingInterval + h.PingTimeout
	if total <= 0 {
		return 0
	}
	return time.Duration(total) * time.Millisecond
}
