package utils

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeAddr(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
		err  error
	}{
		{name: "strips http scheme", addr: "http://polkadot.io", want: "polkadot.io"},
		{name: "strips wss scheme and port", addr: "wss://rpc.polkadot.io:443", want: "rpc.polkadot.io"},
		{name: "bare hostname untouched", addr: "polkadot.io", want: "polkadot.io"},
		{name: "strips port and trailing slash", addr: "tcp://192.168.42.42:5050/", want: "192.168.42.42"},
		{name: "bare ip untouched", addr: "192.168.42.42", want: "192.168.42.42"},
		{name: "empty addr rejected", addr: "", want: "", err: ErrInvalidIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeAddr(tt.addr)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAddr(t *testing.T) {
	tests := []struct {
		name string
		addr string
		// resolved is left empty when the answer depends on the local resolver
		resolved string
	}{
		{name: "ip with port", addr: "192.168.42.42:5050", resolved: "192.168.42.42"},
		{name: "bare ip", addr: "192.168.42.42", resolved: "192.168.42.42"},
		{name: "localhost resolves to loopback", addr: "localhost", resolved: "127.0.0.1"},
		{name: "localhost url", addr: "http://localhost:8080/"},
		{name: "hostname with scheme", addr: "https://polkadot.io"},
		{name: "bare hostname", addr: "polkadot.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAddr(tt.addr)
			require.NoError(t, err)
			// whatever comes back must be a concrete ip
			require.NotNil(t, net.ParseIP(got), "got %q, not an ip", got)

			if tt.resolved != "" {
				assert.Equal(t, tt.resolved, got)
			}
		})
	}
}
