package ui

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// renderQR draws code as a half-block QR symbol suitable for a terminal.
func renderQR(code string) (string, error) {
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return strings.TrimRight(q.ToSmallString(false), "\n"), nil
}
