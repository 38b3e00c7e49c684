package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default configuration values (production)
const (
	DefaultDomain   = "signal.screenbeam.dev"
	DefaultSTUN     = "stun:stun.l.google.com:19302"
	DefaultTURN     = "" // Optional, empty by default
	DefaultTURNUser = ""
	DefaultTURNPass = ""

	// Capture defaults: portrait phone screen, fixed frame rate.
	DefaultCaptureWidth  = 2400
	DefaultCaptureHeight = 1080
	DefaultCaptureFPS    = 30

	// DefaultCaptureToken is the opaque handle presented to the media engine
	// when starting screen capture. On platforms with a permission flow the
	// presentation layer replaces it with the granted token.
	DefaultCaptureToken = "local-display"
)

// Config holds application configuration
type Config struct {
	// Domain is the signaling server domain
	Domain string

	// WebSocketURL is constructed from domain
	WebSocketURL string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool

	// Screen capture settings
	CaptureWidth  int
	CaptureHeight int
	CaptureFPS    int
	CaptureToken  string
}

// Options for loading config with CLI flag overrides
type Options struct {
	Domain       string
	STUNServer   string
	TURNServer   string
	TURNUser     string
	TURNPass     string
	ForceRelay   bool
	CaptureToken string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	domain := stringChain(opts.Domain, "DOMAIN", DefaultDomain)
	stunServer := stringChain(opts.STUNServer, "STUN_SERVER", DefaultSTUN)
	turnServer := stringChain(opts.TURNServer, "TURN_SERVER", DefaultTURN)
	turnUser := stringChain(opts.TURNUser, "TURN_USERNAME", DefaultTURNUser)
	turnPass := stringChain(opts.TURNPass, "TURN_PASSWORD", DefaultTURNPass)
	captureToken := stringChain(opts.CaptureToken, "CAPTURE_TOKEN", DefaultCaptureToken)

	width, err := intEnv("CAPTURE_WIDTH", DefaultCaptureWidth)
	if err != nil {
		return nil, err
	}
	height, err := intEnv("CAPTURE_HEIGHT", DefaultCaptureHeight)
	if err != nil {
		return nil, err
	}
	fps, err := intEnv("CAPTURE_FPS", DefaultCaptureFPS)
	if err != nil {
		return nil, err
	}

	wsURL := fmt.Sprintf("wss://%s/ws", domain)

	return &Config{
		Domain:        domain,
		WebSocketURL:  wsURL,
		STUNServer:    stunServer,
		TURNServer:    turnServer,
		TURNUser:      turnUser,
		TURNPass:      turnPass,
		ForceRelay:    opts.ForceRelay,
		CaptureWidth:  width,
		CaptureHeight: height,
		CaptureFPS:    fps,
		CaptureToken:  captureToken,
	}, nil
}

func stringChain(flag, envKey, fallback string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func intEnv(envKey string, fallback int) (int, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envKey, err)
	}
	return n, nil
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
