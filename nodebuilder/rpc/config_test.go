package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, defaultBindAddress, cfg.Address)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.False(t, cfg.SkipAuth)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{"default", DefaultConfig(), false},
		{"scheme prefixed address", Config{Address: "http://127.0.0.1", Port: "8080"}, false},
		{"unresolvable address", Config{Address: "invalid", Port: "8080"}, true},
		{"port not a number", Config{Address: "127.0.0.1", Port: "invalid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

// Validate rewrites the address to its sanitized form so the server binds
// to what the other checks ran against.
func TestValidateSanitizesAddress(t *testing.T) {
	cfg := Config{Address: "http://127.0.0.1/", Port: "9933"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1", cfg.Address)
}

func TestRequestURL(t *testing.T) {
	cfg := Config{Address: "127.0.0.1", Port: "8080"}
	assert.Equal(t, "http://127.0.0.1:8080", cfg.RequestURL())
}
