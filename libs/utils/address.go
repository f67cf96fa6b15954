package utils

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var ErrInvalidIP = errors.New("utils: invalid ip or hostname")

// schemes accepted in user supplied addresses, stripped before validation.
var schemes = []string{"http://", "https://", "ws://", "wss://", "tcp://"}

// SanitizeAddr reduces the given address to a bare IP or hostname, dropping
// any leading protocol scheme and any port or trailing slash.
func SanitizeAddr(addr string) (string, error) {
	original := addr
	for _, scheme := range schemes {
		if after, ok := strings.CutPrefix(addr, scheme); ok {
			addr = after
			break
		}
	}
	addr = strings.TrimSuffix(addr, "/")
	addr, _, _ = strings.Cut(addr, ":")
	if addr == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidIP, original)
	}
	return addr, nil
}

// ValidateAddr sanitizes the given address and verifies it is a usable IP or
// resolvable hostname. The sanitized address is returned.
func ValidateAddr(addr string) (string, error) {
	addr, err := SanitizeAddr(addr)
	if err != nil {
		return addr, err
	}

	if ip := net.ParseIP(addr); ip != nil {
		return addr, nil
	}

	resolved, err := net.ResolveIPAddr("ip4", addr)
	if err != nil {
		return addr, err
	}
	return resolved.String(), nil
}
