package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodePacket(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		typ     packetType
		nsp     string
		id      int
		hasID   bool
		payload string
	}{
		{"connect default namespace", "0", packetConnect, "/", 0, false, ""},
		{"connect ack", `0/server-namespace,{"sid":"abc"}`, packetConnect, "/server-namespace", 0, false, `{"sid":"abc"}`},
		{"disconnect without comma", "1/server-namespace", packetDisconnect, "/server-namespace", 0, false, ""},
		{"event", `2["sid-update","x"]`, packetEvent, "/", 0, false, `["sid-update","x"]`},
		{"event with ack id", `2/tv,12["ping"]`, packetEvent, "/tv", 12, true, `["ping"]`},
		{"connect error", `4/tv,{"message":"nope"}`, packetConnectError, "/tv", 0, false, `{"message":"nope"}`},
		{"binary event", `51-/tv,["blob",{"_placeholder":true,"num":0}]`, packetBinaryEvent, "/tv", 0, false, `["blob",{"_placeholder":true,"num":0}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := decodePacket(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.typ, p.Type)
			require.Equal(t, tc.nsp, p.Namespace)
			require.Equal(t, tc.hasID, p.HasID)
			require.Equal(t, tc.id, p.ID)
			require.Equal(t, tc.payload, string(p.Data))
		})
	}
}

func TestDecodePacket_Malformed(t *testing.T) {
	for _, in := range []string{"", "9", "x", `2["unterminated`, "51/tv,[]"} {
		_, err := decodePacket(in)
		require.Error(t, err, "input %q", in)
		require.True(t, errors.Is(err, ErrMalformedPacket), "input %q err %v", in, err)
	}
}

func TestPacketEncode(t *testing.T) {
	require.Equal(t, "0/server-namespace,", packet{Type: packetConnect, Namespace: "/server-namespace"}.encode())
	require.Equal(t, "1", packet{Type: packetDisconnect, Namespace: "/"}.encode())
	require.Equal(t, `2/tv,7["hi"]`, packet{Type: packetEvent, Namespace: "/tv", ID: 7, HasID: true, Data: []byte(`["hi"]`)}.encode())
}

func TestEnginePackets(t *testing.T) {
	p, err := decodeEnginePacket([]byte("2probe"))
	require.NoError(t, err)
	require.Equal(t, enginePing, p.Type)
	require.Equal(t, "3probe", string(enginePacket{Type: enginePong, Data: p.Data}.encode()))

	_, err = decodeEnginePacket(nil)
	require.ErrorIs(t, err, ErrMalformedPacket)
	_, err = decodeEnginePacket([]byte("7"))
	require.ErrorIs(t, err, ErrMalformedPacket)
}

func TestParseHandshake(t *testing.T) {
	hs, err := parseHandshake(enginePacket{Type: engineOpen, Data: `{"sid":"e1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`})
	require.NoError(t, err)
	require.Equal(t, "e1", hs.SID)
	require.Equal(t, 45*time.Second, hs.readWindow())

	_, err = parseHandshake(enginePacket{Type: engineMessage, Data: "{}"})
	require.ErrorIs(t, err, ErrMalformedPacket)

	require.Zero(t, handshake{}.readWindow())
}

func TestConnectErrorFrom(t *testing.T) {
	var se *ServerError

	err := connectErrorFrom([]byte(`{"message":"invalid pair code"}`))
	require.ErrorAs(t, err, &se)
	require.Equal(t, "invalid pair code", se.Message)

	err = connectErrorFrom([]byte(`"legacy"`))
	require.ErrorAs(t, err, &se)
	require.Equal(t, "legacy", se.Message)

	require.EqualError(t, connectErrorFrom(nil), "server rejected connection")
}

func TestEventArgs(t *testing.T) {
	name, args, err := eventArgs([]byte(`["sid-update","abc"]`))
	require.NoError(t, err)
	require.Equal(t, "sid-update", name)
	require.Len(t, args, 1)

	_, _, err = eventArgs([]byte(`[]`))
	require.ErrorIs(t, err, ErrMalformedPacket)

	_, _, err = eventArgs([]byte(`[42]`))
	require.Error(t, err)
}

func TestEventKindString(t *testing.T) {
	require.Equal(t, "connect", EventConnect.String())
	require.Equal(t, "disconnect", EventDisconnect.String())
	require.Equal(t, "connect_error", EventConnectError.String())
	require.Equal(t, "sid-update", EventSIDUpdate.String())
	require.Equal(t, "unknown", EventKind(0).String())
}
