package gateway

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	flags := Flags()

	enabled := flags.Lookup(enabledFlag)
	require.NotNil(t, enabled)
	assert.Equal(t, "false", enabled.Value.String())
	assert.Equal(t, "Enables the REST gateway", enabled.Usage)

	addr := flags.Lookup(addrFlag)
	require.NotNil(t, addr)
	assert.Equal(t, "", addr.Value.String())
	assert.Equal(t, fmt.Sprintf("Set a custom gateway listen address (default: %s)", defaultBindAddress), addr.Usage)

	port := flags.Lookup(portFlag)
	require.NotNil(t, port)
	assert.Equal(t, "", port.Value.String())
	assert.Equal(t, fmt.Sprintf("Set a custom gateway port (default: %s)", defaultPort), port.Usage)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		addr    string
		port    string
		want    Config
	}{
		{
			name:    "enabled with custom address",
			enabled: true,
			addr:    "127.0.0.1",
			port:    "8080",
			want:    Config{Enabled: true, Address: "127.0.0.1", Port: "8080"},
		},
		{
			name: "address and port kept while disabled",
			addr: "127.0.0.1",
			port: "8080",
			want: Config{Address: "127.0.0.1", Port: "8080"},
		},
		{
			name: "nothing set",
			want: Config{},
		},
		{
			name:    "custom port only",
			enabled: true,
			port:    "9936",
			want:    Config{Enabled: true, Port: "9936"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().AddFlagSet(Flags())

			require.NoError(t, cmd.Flags().Set(enabledFlag, strconv.FormatBool(tt.enabled)))
			require.NoError(t, cmd.Flags().Set(addrFlag, tt.addr))
			require.NoError(t, cmd.Flags().Set(portFlag, tt.port))

			var cfg Config
			ParseFlags(cmd, &cfg)
			assert.Equal(t, tt.want, cfg)
		})
	}
}
