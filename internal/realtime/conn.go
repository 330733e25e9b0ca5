package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultPath             = "/socket.io/"
	defaultHandshakeTimeout = 10 * time.Second
	writeWait               = 5 * time.Second
	eventBuffer             = 16
)

// Options configure a Dialer.
type Options struct {
	// URL is the server address; its path selects the namespace, e.g.
	// https://api.astacms.com/server-namespace.
	URL string
	// Path is the Engine.IO endpoint path. Defaults to /socket.io/.
	Path string
	// HandshakeTimeout bounds the websocket upgrade and the open packet.
	HandshakeTimeout time.Duration
	// Header is sent with the upgrade request.
	Header http.Header
	Logger zerolog.Logger
}

// Dialer opens Socket.IO sessions over the websocket transport.
type Dialer struct {
	base             url.URL
	namespace        string
	query            url.Values
	header           http.Header
	handshakeTimeout time.Duration
	ws               *websocket.Dialer
	log              zerolog.Logger
}

// NewDialer validates opts and returns a Dialer.
func NewDialer(opts Options) (*Dialer, error) {
	raw := strings.TrimSpace(opts.URL)
	if raw == "" {
		return nil, fmt.Errorf("realtime url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url %q: %w", opts.URL, err)
	}

	var scheme string
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		scheme = "ws"
	case "https", "wss":
		scheme = "wss"
	default:
		return nil, fmt.Errorf("parse realtime url %q: unsupported scheme %q", opts.URL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse realtime url %q: host required", opts.URL)
	}

	namespace := strings.TrimSuffix(u.Path, "/")
	if namespace == "" {
		namespace = "/"
	}

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	timeout := opts.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}

	return &Dialer{
		base:             url.URL{Scheme: scheme, Host: u.Host, Path: path},
		namespace:        namespace,
		query:            u.Query(),
		header:           opts.Header.Clone(),
		handshakeTimeout: timeout,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
		},
		log: opts.Logger,
	}, nil
}

// Namespace returns the Socket.IO namespace sessions join.
func (d *Dialer) Namespace() string {
	return d.namespace
}

// Endpoint returns the websocket URL a session with query would dial.
func (d *Dialer) Endpoint(query url.Values) string {
	values := url.Values{}
	for k, v := range d.query {
		values[k] = append([]string(nil), v...)
	}
	for k, v := range query {
		values[k] = append([]string(nil), v...)
	}
	values.Set("EIO", engineProtocol)
	values.Set("transport", "websocket")

	u := d.base
	u.RawQuery = values.Encode()
	return u.String()
}

// Open starts a session in the background and returns its handle
// immediately. Progress is reported on Events. The session ends when the
// server drops it, when ctx is cancelled or when Close is called.
func (d *Dialer) Open(ctx context.Context, query url.Values) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		dialer:    d,
		namespace: d.namespace,
		log:       d.log.With().Str("namespace", d.namespace).Logger(),
		events:    make(chan Event, eventBuffer),
		cancel:    cancel,
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	go c.run(ctx, d.Endpoint(query))
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.exited:
		}
	}()
	return c
}

// Conn is one Socket.IO session. It is owned by whoever called Open; only
// the owner closes it.
type Conn struct {
	dialer    *Dialer
	namespace string
	log       zerolog.Logger

	events chan Event
	cancel context.CancelFunc
	done   chan struct{} // closed by Close
	exited chan struct{} // closed when run returns

	closeOnce sync.Once
	closeErr  error

	mu      sync.Mutex
	ws      *websocket.Conn
	closing bool

	writeMu sync.Mutex
}

// Events delivers lifecycle and server events. The channel is closed when
// the session has ended. No events are delivered after Close.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close tears the session down, telling the server when possible. It
// blocks until the background reader has exited and is safe to call more
// than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()

		c.mu.Lock()
		c.closing = true
		ws := c.ws
		c.mu.Unlock()

		if ws != nil {
			bye := packet{Type: packetDisconnect, Namespace: c.namespace}
			if err := c.writeEngine(ws, enginePacket{Type: engineMessage, Data: bye.encode()}); err != nil {
				c.log.Debug().Err(err).Msg("send disconnect failed")
			}
			if err := ws.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				c.closeErr = err
			}
		}
		<-c.exited
		c.log.Debug().Msg("realtime session closed")
	})
	return c.closeErr
}

func (c *Conn) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

func (c *Conn) emit(ev Event) {
	select {
	case <-c.done:
		return
	default:
	}
	c.log.Info().Str("event", ev.Kind.String()).Str("id", ev.ID).Str("reason", ev.Reason).AnErr("error", ev.Err).Msg("realtime event")
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Conn) run(ctx context.Context, endpoint string) {
	defer close(c.exited)
	defer close(c.events)

	c.log.Info().Str("endpoint", endpoint).Msg("realtime connecting")
	ws, _, err := c.dialer.ws.DialContext(ctx, endpoint, c.dialer.header)
	if err != nil {
		c.emit(Event{Kind: EventConnectError, Err: fmt.Errorf("dial: %w", err)})
		return
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.ws = ws
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.ws = nil
		c.mu.Unlock()
		_ = ws.Close()
	}()

	hs, err := c.handshake(ws)
	if err != nil {
		if !c.isClosing() {
			c.emit(Event{Kind: EventConnectError, Err: err})
		}
		return
	}

	hello := packet{Type: packetConnect, Namespace: c.namespace}
	if err := c.writeEngine(ws, enginePacket{Type: engineMessage, Data: hello.encode()}); err != nil {
		if !c.isClosing() {
			c.emit(Event{Kind: EventConnectError, Err: fmt.Errorf("send connect: %w", err)})
		}
		return
	}

	if final := c.readLoop(ws, hs); final != nil {
		c.emit(*final)
	}
}

func (c *Conn) handshake(ws *websocket.Conn) (handshake, error) {
	_ = ws.SetReadDeadline(time.Now().Add(c.dialer.handshakeTimeout))
	kind, msg, err := ws.ReadMessage()
	if err != nil {
		return handshake{}, fmt.Errorf("read open packet: %w", err)
	}
	if kind != websocket.TextMessage {
		return handshake{}, fmt.Errorf("%w: open packet is not text", ErrMalformedPacket)
	}
	p, err := decodeEnginePacket(msg)
	if err != nil {
		return handshake{}, err
	}
	hs, err := parseHandshake(p)
	if err != nil {
		return handshake{}, err
	}
	c.log.Debug().Str("engine_sid", hs.SID).Int("ping_interval_ms", hs.PingInterval).Int("ping_timeout_ms", hs.PingTimeout).Msg("engine handshake")
	return hs, nil
}

// readLoop consumes frames until the session ends and returns the event
// describing why, or nil when the owner closed the session.
func (c *Conn) readLoop(ws *websocket.Conn, hs handshake) *Event {
	connected := false
	fail := func(err error, reason string) *Event {
		if connected {
			return &Event{Kind: EventDisconnect, Reason: reason}
		}
		return &Event{Kind: EventConnectError, Err: err}
	}

	for {
		var deadline time.Time
		if window := hs.readWindow(); window > 0 {
			deadline = time.Now().Add(window)
		}
		_ = ws.SetReadDeadline(deadline)

		kind, msg, err := ws.ReadMessage()
		if err != nil {
			if c.isClosing() {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return fail(fmt.Errorf("read: %w", err), ReasonPingTimeout)
			}
			return fail(fmt.Errorf("read: %w", err), ReasonTransportClose)
		}
		if kind != websocket.TextMessage {
			c.log.Debug().Int("bytes", len(msg)).Msg("ignoring binary frame")
			continue
		}

		ep, err := decodeEnginePacket(msg)
		if err != nil {
			c.log.Debug().Err(err).Msg("ignoring engine frame")
			continue
		}

		switch ep.Type {
		case enginePing:
			if err := c.writeEngine(ws, enginePacket{Type: enginePong, Data: ep.Data}); err != nil {
				if c.isClosing() {
					return nil
				}
				return fail(fmt.Errorf("send pong: %w", err), ReasonTransportError)
			}
		case engineClose:
			return fail(ErrTransportClosed, ReasonTransportClose)
		case engineMessage:
			p, err := decodePacket(ep.Data)
			if err != nil {
				c.log.Debug().Err(err).Msg("ignoring socket packet")
				continue
			}
			if p.Namespace != c.namespace {
				continue
			}
			switch p.Type {
			case packetConnect:
				var ack struct {
					SID string `json:"sid"`
				}
				if len(p.Data) > 0 {
					_ = json.Unmarshal(p.Data, &ack)
				}
				if ack.SID == "" {
					ack.SID = hs.SID
				}
				connected = true
				c.emit(Event{Kind: EventConnect, ID: ack.SID})
			case packetConnectError:
				return &Event{Kind: EventConnectError, Err: connectErrorFrom(p.Data)}
			case packetDisconnect:
				return fail(ErrTransportClosed, ReasonServerDisconnect)
			case packetEvent:
				c.dispatch(p.Data)
			default:
				c.log.Debug().Str("type", p.Type.String()).Msg("ignoring socket packet")
			}
		}
	}
}

func (c *Conn) dispatch(data json.RawMessage) {
	name, args, err := eventArgs(data)
	if err != nil {
		c.log.Debug().Err(err).Msg("ignoring event")
		return
	}
	switch name {
	case EventSIDUpdate.String():
		var id string
		if len(args) == 0 || json.Unmarshal(args[0], &id) != nil {
			c.log.Warn().Msg("sid-update without string payload")
			return
		}
		c.emit(Event{Kind: EventSIDUpdate, ID: id})
	default:
		c.log.Debug().Str("event", name).Msg("ignoring unhandled event")
	}
}

func (c *Conn) writeEngine(ws *websocket.Conn, p enginePacket) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.TextMessage, p.encode())
}
