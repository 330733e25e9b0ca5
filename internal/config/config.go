package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Config captures the endpoints and runtime knobs for the pairing screen.
type Config struct {
	PairingEndpoint  string
	RealtimeURL      string
	RealtimePath     string
	Transport        string
	RequestTimeout   time.Duration
	HandshakeTimeout time.Duration
	LogFile          string
	LogLevel         string
}

const (
	defaultConfigPath       = "~/.config/pairscreen/config.toml"
	defaultPairingEndpoint  = "https://qa.api.astacms.com/api/pair-code"
	defaultRealtimeURL      = "https://api.astacms.com/server-namespace"
	defaultRealtimePath     = "/socket.io/"
	defaultTransport        = "websocket"
	defaultRequestTimeout   = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	defaultLogFile          = "~/.local/state/pairscreen/pairscreen.log"
	defaultLogLevel         = "info"
)

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		PairingEndpoint:  defaultPairingEndpoint,
		RealtimeURL:      defaultRealtimeURL,
		RealtimePath:     defaultRealtimePath,
		Transport:        defaultTransport,
		RequestTimeout:   defaultRequestTimeout,
		HandshakeTimeout: defaultHandshakeTimeout,
		LogFile:          mustExpand(defaultLogFile),
		LogLevel:         defaultLogLevel,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		PairingEndpoint  string  `toml:"pairing_endpoint"`
		RealtimeURL      string  `toml:"realtime_url"`
		RealtimePath     string  `toml:"realtime_path"`
		Transport        string  `toml:"transport"`
		RequestTimeout   string  `toml:"request_timeout"`
		HandshakeTimeout string  `toml:"handshake_timeout"`
		LogFile          *string `toml:"log_file"`
		LogLevel         string  `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.PairingEndpoint = orDefault(raw.PairingEndpoint, defaultPairingEndpoint)
	cfg.RealtimeURL = orDefault(raw.RealtimeURL, defaultRealtimeURL)
	cfg.RealtimePath = orDefault(raw.RealtimePath, defaultRealtimePath)
	cfg.Transport = strings.ToLower(orDefault(raw.Transport, defaultTransport))
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel))

	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HandshakeTimeout, err = parseDuration("handshake_timeout", raw.HandshakeTimeout, defaultHandshakeTimeout); err != nil {
		return Config{}, err
	}

	// An explicit empty log_file turns logging off.
	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
		if cfg.LogFile != "" {
			cfg.LogFile = mustExpand(cfg.LogFile)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values the clients cannot work with.
func (c Config) Validate() error {
	for _, field := range []struct{ name, raw string }{
		{"pairing_endpoint", c.PairingEndpoint},
		{"realtime_url", c.RealtimeURL},
	} {
		name, raw := field.name, field.raw
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q: absolute URL required", name, raw)
		}
	}
	if c.Transport != defaultTransport {
		return fmt.Errorf("unsupported transport %q: only %q is available", c.Transport, defaultTransport)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse %s: must be positive, got %s", name, d)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
