package rpc

import (
	"fmt"
	"strconv"

	"github.com/rotkonetworks/kagome/libs/utils"
)

// Config controls the JSON-RPC server of the node.
type Config struct {
	Address  string
	Port     string
	SkipAuth bool
}

func DefaultConfig() Config {
	return Config{
		Address: defaultBindAddress,
		// substrate nodes serve websocket RPC on 9944; keep the legacy
		// http port so both can run on the same machine
		Port:     defaultPort,
		SkipAuth: false,
	}
}

// RequestURL reports the URL a client dials to reach the server.
func (cfg *Config) RequestURL() string {
	return fmt.Sprintf("http://%s:%s", cfg.Address, cfg.Port)
}

// Validate sanitizes the address in place and verifies the port parses.
func (cfg *Config) Validate() error {
	addr, err := utils.ValidateAddr(cfg.Address)
	if err != nil {
		return fmt.Errorf("service/rpc: invalid address: %w", err)
	}
	cfg.Address = addr

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("service/rpc: invalid port: %s", err.Error())
	}
	return nil
}
