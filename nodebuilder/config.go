package nodebuilder

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/imdario/mergo"

	"github.com/rotkonetworks/kagome/nodebuilder/gateway"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/rpc"
)

// ConfigLoader defines a function that loads a config from any source.
type ConfigLoader func() (*Config, error)

// Config collects the configuration of every Node subsystem.
type Config struct {
	P2P     p2p.Config
	Peers   peers.Config
	RPC     rpc.Config
	Gateway gateway.Config
}

// DefaultConfig provides a default Config for a given Node Type 'tp'.
// NOTE: Currently, configs are identical, but this will change.
func DefaultConfig(tp node.Type) *Config {
	switch tp {
	case node.Full, node.Authority:
		return &Config{
			P2P:     p2p.DefaultConfig(tp),
			Peers:   peers.DefaultConfig(),
			RPC:     rpc.DefaultConfig(),
			Gateway: gateway.DefaultConfig(),
		}
	default:
		panic("node: invalid node type")
	}
}

// SaveConfig writes the Config in TOML form to the given path.
func SaveConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return cfg.Encode(f)
}

// LoadConfig reads a Config back from the given path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	return &cfg, cfg.Decode(f)
}

// RemoveConfig deletes the config of the store at the given path.
func RemoveConfig(path string) error {
	return withLockedStore(path, func(storePath string) error {
		return os.Remove(configPath(storePath))
	})
}

// UpdateConfig rewrites the stored config, filling everything the stored
// version leaves empty with defaults of the current build. Set fields
// survive, so the command is safe to run across version bumps.
func UpdateConfig(tp node.Type, path string) error {
	return withLockedStore(path, func(storePath string) error {
		cfgPath := configPath(storePath)
		cfg, err := LoadConfig(cfgPath)
		if err != nil {
			return err
		}

		if err := mergo.Merge(cfg, DefaultConfig(tp), mergo.WithOverrideEmptySlice); err != nil {
			return err
		}

		if err := os.Remove(cfgPath); err != nil {
			return err
		}
		return SaveConfig(cfgPath, cfg)
	})
}

// withLockedStore runs fn holding the store's flock. A store in use by a
// running node stays untouched.
func withLockedStore(path string, fn func(storePath string) error) error {
	path, err := storePath(path)
	if err != nil {
		return err
	}

	flk := flock.New(lockPath(path))
	ok, err := flk.TryLock()
	if err != nil {
		return fmt.Errorf("locking file: %w", err)
	}
	if !ok {
		return ErrOpened
	}
	defer flk.Unlock() //nolint:errcheck

	return fn(path)
}

// Encode encodes a given Config into w.
func (cfg *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Decode decodes a Config from a given reader r.
func (cfg *Config) Decode(r io.Reader) error {
	_, err := toml.NewDecoder(r).Decode(cfg)
	return err
}
