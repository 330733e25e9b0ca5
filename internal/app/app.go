package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/five82/pairscreen/internal/config"
	"github.com/five82/pairscreen/internal/pairing"
	"github.com/five82/pairscreen/internal/prefs"
	"github.com/five82/pairscreen/internal/realtime"
	"github.com/five82/pairscreen/internal/ui"
)

const userAgent = "pairscreen/0.1"

// Options configure the pairing screen application. Non-empty overrides
// replace the matching config file values.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pairscreen/prefs.toml

	Endpoint    string
	RealtimeURL string
	LogFile     *string // nil keeps the config value; "" disables logging
	LogLevel    string
}

// Run boots the pairing screen until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := pairing.NewClient(cfg.PairingEndpoint,
		pairing.WithTimeout(cfg.RequestTimeout),
		pairing.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init pairing client: %w", err)
	}

	dialer, err := realtime.NewDialer(realtime.Options{
		URL:              cfg.RealtimeURL,
		Path:             cfg.RealtimePath,
		HandshakeTimeout: cfg.HandshakeTimeout,
		Header:           http.Header{"User-Agent": {userAgent}},
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("init realtime dialer: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger.Info().
		Str("endpoint", cfg.PairingEndpoint).
		Str("realtime", dialer.Endpoint(nil)).
		Str("namespace", dialer.Namespace()).
		Msg("pairscreen starting")

	err = ui.Run(ui.Options{
		Context:   ctx,
		Fetcher:   client,
		Connect:   connector(dialer),
		Logger:    logger,
		Prefs:     prefs.Load(prefsPath),
		PrefsPath: prefsPath,
	})
	logger.Info().Err(err).Msg("pairscreen stopped")
	return err
}

// loadConfig reads the config file and layers command-line overrides on top.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if v := strings.TrimSpace(opts.Endpoint); v != "" {
		cfg.PairingEndpoint = v
	}
	if v := strings.TrimSpace(opts.RealtimeURL); v != "" {
		cfg.RealtimeURL = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if opts.LogFile != nil {
		cfg.LogFile = ""
		if v := strings.TrimSpace(*opts.LogFile); v != "" {
			expanded, err := config.ExpandPath(v)
			if err != nil {
				return config.Config{}, fmt.Errorf("log file: %w", err)
			}
			cfg.LogFile = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// connector opens one realtime session per pairing code. The code travels
// as the pairCode query parameter of the handshake.
func connector(d *realtime.Dialer) ui.Connector {
	return func(ctx context.Context, code string) ui.Connection {
		return d.Open(ctx, url.Values{"pairCode": {code}})
	}
}

