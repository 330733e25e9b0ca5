package ui

// ConnStatus is the realtime channel's last observed transition.
type ConnStatus int

const (
	StatusDisconnected ConnStatus = iota
	StatusConnecting
	StatusConnected
	StatusFailed
)

// String returns the text shown next to "Socket Status:".
func (s ConnStatus) String() string {
	switch s {
	case StatusConnecting:
		return "Connecting..."
	case StatusConnected:
		return "Connected to Server"
	case StatusFailed:
		return "Failed to connect to the server"
	default:
		return "Disconnected"
	}
}

// statusColor picks the theme color for a connection status.
func (t Theme) statusColor(s ConnStatus) string {
	switch s {
	case StatusConnected:
		return t.Success
	case StatusConnecting:
		return t.Warning
	case StatusFailed:
		return t.Danger
	default:
		return t.Muted
	}
}
