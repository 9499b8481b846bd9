package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// SelectBindAddr resolves the daemon's listen address. The preferred address
// wins when free; when it is taken and fallback is enabled the candidate
// list is scanned in order.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	if preferred != "" {
		free, err := IsAddrAvailable(preferred)
		if err != nil {
			return "", err
		}
		if free {
			return preferred, nil
		}
		if !autoFallback {
			return "", fmt.Errorf("preferred bind address in use: %s", preferred)
		}
		slog.Warn("preferred bind address in use, scanning candidates",
			"preferred", preferred, "candidates", len(candidates))
	}

	for _, addr := range candidates {
		free, err := IsAddrAvailable(addr)
		if err != nil {
			return "", err
		}
		if free {
			slog.Info("selected fallback bind address", "addr", addr)
			return addr, nil
		}
	}

	return "", errors.New("no available bind addresses")
}

// IsAddrAvailable reports whether addr can be listened on right now. A
// listen failure means "taken", not an error; only failing to release the
// probe listener is surfaced.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}
