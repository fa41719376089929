package adapter

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/mlevkov/lockstep/internal/config"
)

const dialProbeTimeout = 2 * time.Second

// NewDialProbe returns a connectivity check that opens and immediately closes
// a TCP connection to the sync server's address. It never issues an HTTP
// request, so a positive answer only means the host is reachable, not that
// the server is healthy. Falls back to port 80/443 when cfg.BaseURL names no
// port.
func NewDialProbe(cfg config.ClientAdapter) func(ctx context.Context) bool {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	addr := dialAddress(cfg.BaseURL)

	return func(ctx context.Context) bool {
		d := net.Dialer{Timeout: dialProbeTimeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

func dialAddress(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}

	if u.Port() != "" {
		return u.Host
	}

	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
