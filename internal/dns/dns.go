package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// publicDNS are servers to be queried if a local lookup fails.
// These are well-known, high-availability public DNS providers.
var publicDNS = []string{
	"1.1.1.1",         // Cloudflare
	"1.0.0.1",         // Cloudflare
	"8.8.8.8",         // Google
	"8.8.4.4",         // Google
	"9.9.9.9",         // Quad9
	"149.112.112.112", // Quad9
}

const lookupTimeout = 5 * time.Second

// Lookup resolves a hostname to an IP address.
// It first attempts to use the system's default resolver.
// If that fails, it falls back to querying public DNS providers directly.
func Lookup(address string) (string, error) {
	if ip := net.ParseIP(address); ip != nil {
		return address, nil
	}

	ip, err := localLookupIP(address)
	if err == nil && ip != "" {
		return ip, nil
	}

	return remoteLookup(address)
}

// localLookupIP returns a host's IP address using the local DNS configuration.
func localLookupIP(address string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", address)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("no addresses found for %s", address)
	}
	return ips[0].String(), nil
}

// remoteLookup races the public DNS providers and returns the first answer.
func remoteLookup(address string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	results := make(chan string, len(publicDNS))

	for _, server := range publicDNS {
		go func(server string) {
			r := &net.Resolver{
				PreferGo: true,
				Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
					d := net.Dialer{Timeout: lookupTimeout}
					return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
				},
			}
			ips, err := r.LookupIP(ctx, "ip", address)
			if err != nil || len(ips) == 0 {
				return
			}
			select {
			case results <- ips[0].String():
			default:
			}
		}(server)
	}

	select {
	case ip := <-results:
		return ip, nil
	case <-ctx.Done():
		return "", errors.New("all DNS lookups failed for " + address)
	}
}
