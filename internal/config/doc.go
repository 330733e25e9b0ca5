// Package config loads the pairing screen's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/pairscreen/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Pairing endpoint: https://qa.api.astacms.com/api/pair-code
//   - Realtime URL: https://api.astacms.com/server-namespace
//   - Engine.IO path: /socket.io/
//   - Transport: websocket (the only accepted value)
//   - Request and handshake timeouts: 10s
//   - Log file: ~/.local/state/pairscreen/pairscreen.log
//
// # TOML Format
//
//	pairing_endpoint = "https://qa.api.astacms.com/api/pair-code"
//	realtime_url = "https://api.astacms.com/server-namespace"
//	realtime_path = "/socket.io/"
//	transport = "websocket"
//	request_timeout = "10s"
//	handshake_timeout = "10s"
//	log_file = "~/.local/state/pairscreen/pairscreen.log"
//	log_level = "info"
//
// All fields are optional. Durations use Go syntax. Setting log_file to an
// empty string disables logging entirely.
//
// # Error Handling
//
// Load returns errors for unreadable or unparsable files, invalid durations,
// non-absolute URLs and transports other than websocket. A missing file is
// not an error.
package config
