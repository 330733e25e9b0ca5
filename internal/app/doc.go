// Package app is the composition root for the pairing screen.
//
// # Overview
//
// Run loads configuration, applies command-line overrides, opens the log
// file and builds the two network clients before handing control to the
// Bubble Tea UI:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read ~/.config/pairscreen/config.toml
//	       ├─────> newLogger()           zerolog to the log file (or Nop)
//	       ├─────> pairing.NewClient()   HTTP pair-code client
//	       ├─────> realtime.NewDialer()  Socket.IO dialer
//	       ├─────> prefs.Load()          Theme and QR toggle
//	       └─────> ui.Run()              Pairing screen (blocks)
//
// The UI never sees the dialer directly. It receives a ui.Connector that
// opens one realtime session per pairing code, passing the code as the
// pairCode handshake query parameter.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file unreadable or invalid, including bad overrides
//   - Log file cannot be created or log_level is unknown
//   - Endpoint URLs the clients reject
//
// Everything after the UI starts is recoverable: failed fetches and
// dropped sessions are shown on screen and logged.
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{}); err != nil {
//		log.Fatalf("pairscreen failed: %v", err)
//	}
package app
