package gateway

import (
	"fmt"
	"strconv"

	"github.com/rotkonetworks/kagome/libs/utils"
)

// Config controls the REST gateway of the node.
type Config struct {
	Address string
	Port    string
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		Address: defaultBindAddress,
		Port:    defaultPort,
		Enabled: false,
	}
}

// Validate sanitizes the address in place. A disabled gateway skips
// validation entirely, its settings may go stale while unused.
func (cfg *Config) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	addr, err := utils.ValidateAddr(cfg.Address)
	if err != nil {
		return fmt.Errorf("service/gateway: invalid address: %w", err)
	}
	cfg.Address = addr

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("service/gateway: invalid port: %s", err.Error())
	}
	return nil
}
