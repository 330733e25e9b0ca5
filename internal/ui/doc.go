// Package ui is the pairing screen: a single Bubble Tea model that shows the
// current pair code and the state of the realtime session keyed by it.
//
// # Lifecycle
//
// New primes the first fetch and Init issues it. Every fetch, initial or
// user-triggered, carries a sequence number; a response whose number is not
// the latest issued is dropped, so a slow early response can never overwrite
// a newer code.
//
// A successful response with a code different from the current one closes
// the open session, if any, and then asks the Connector for a new one. The
// same code leaves the session alone. A failed fetch keeps the previous code
// and session and switches the panel to the error view until the next
// successful fetch.
//
// Each session gets a generation number. Events are delivered back into
// Update tagged with it, and events from a session that has since been
// replaced are ignored.
//
// # Display
//
//   - loading: spinner only
//   - fetch error: "Failed to fetch pair code", the cause, the last code dimmed
//   - otherwise: code, optional QR symbol, refresh button, socket status and
//     the socket identifier ("Not Connected" when there is none)
//
// # Key Bindings
//
//   - r / enter: Fetch a new code
//   - c: Toggle the QR symbol
//   - T: Cycle theme
//   - ?: Toggle full help
//   - q / esc / ctrl+c: Quit (closes the session first)
//
// Theme and QR visibility are persisted through the prefs package.
package ui
