// Package realtime is a minimal Socket.IO v5 client that speaks Engine.IO v4
// over the websocket transport only.
//
// # Scope
//
// The pairing screen needs one thing from the server: a live session that
// reports when it is connected, when it is gone and when the server assigns
// a new session identifier. This package implements exactly that subset:
//
//   - Engine.IO open handshake, ping/pong, close
//   - Socket.IO namespace CONNECT, CONNECT_ERROR, DISCONNECT, EVENT
//   - the "sid-update" server event
//
// Polling transport, upgrades, acknowledgements, binary attachments,
// emitting events and automatic reconnection are deliberately absent.
//
// # Wire Format
//
// A session against https://api.astacms.com/server-namespace with query
// pairCode=ABC123 dials:
//
//	wss://api.astacms.com/socket.io/?EIO=4&pairCode=ABC123&transport=websocket
//
// and then exchanges text frames:
//
//	<- 0{"sid":"...","pingInterval":25000,"pingTimeout":20000,...}
//	-> 40/server-namespace,
//	<- 40/server-namespace,{"sid":"sock-1"}          connect
//	<- 2                                              ping
//	-> 3                                              pong
//	<- 42/server-namespace,["sid-update","sock-2"]    sid-update
//	<- 41/server-namespace,                           disconnect
//
// # Ownership
//
// Dialer.Open returns a *Conn immediately and dials in the background. The
// caller owns the Conn and must Close it; Close sends a namespace
// DISCONNECT, closes the socket and waits for the reader goroutine. After
// Close no further events are delivered and the Events channel is closed.
//
// Every session produces at most one terminal event: EventConnectError if
// the namespace was never joined, EventDisconnect otherwise. There is no
// retry; opening a new session is the caller's decision.
package realtime
