package nodebuilder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4/options"
	"github.com/gofrs/flock"
	"github.com/ipfs/go-datastore"
	dsbadger "github.com/ipfs/go-ds-badger4"
	"github.com/mitchellh/go-homedir"

	"github.com/rotkonetworks/kagome/libs/keystore"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
)

var (
	// ErrOpened is thrown on attempt to open already open/in-use Store.
	ErrOpened = errors.New("node: store is in use")
	// ErrNotInited is thrown on attempt to open Store without initialization.
	ErrNotInited = errors.New("node: store is not initialized")
	// ErrNoOpenStore is thrown when no opened Store is found under the default paths.
	ErrNoOpenStore = errors.New("no opened Node Store found (make sure the node is running)")
)

// Store is the root directory of a Node, holding everything it persists:
// config, keys and the peer datastore. A Store belongs to exactly one
// network and node type.
type Store interface {
	// Path reports the filesystem root of the Store.
	Path() string

	// Keystore gives access to the keys of the node.
	Keystore() (keystore.Keystore, error)

	// Datastore opens the on-disk KV store for arbitrary node data.
	Datastore() (datastore.Batching, error)

	// Config loads the stored Node config.
	Config() (*Config, error)

	// PutConfig alters the stored Node config.
	PutConfig(*Config) error

	// Close releases the Store's resources and its directory lock.
	Close() error
}

type fsStore struct {
	path string

	dataMu  sync.Mutex
	data    datastore.Batching
	keys    keystore.Keystore
	dirLock *flock.Flock // protects directory
}

// OpenStore opens the initialized FS Store under 'path' and takes its
// directory lock, so a store can be open in one process at a time.
// An uninitialized store fails with ErrNotInited, one already in use
// with ErrOpened.
func OpenStore(path string) (Store, error) {
	path, err := storePath(path)
	if err != nil {
		return nil, err
	}

	flk := flock.New(lockPath(path))
	ok, err := flk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking file: %w", err)
	}
	if !ok {
		return nil, ErrOpened
	}

	if !IsInit(path) {
		flk.Unlock() //nolint:errcheck
		return nil, ErrNotInited
	}

	ks, err := keystore.NewFSKeystore(keysPath(path))
	if err != nil {
		flk.Unlock() //nolint:errcheck
		return nil, err
	}

	return &fsStore{
		path:    path,
		dirLock: flk,
		keys:    ks,
	}, nil
}

// IsOpened checks if the Store under the given 'path' is in use by another process.
func IsOpened(path string) (bool, error) {
	flk := flock.New(lockPath(path))
	ok, err := flk.TryLock()
	if err != nil {
		return false, fmt.Errorf("locking file: %w", err)
	}

	err = flk.Unlock()
	if err != nil {
		return false, fmt.Errorf("unlocking file: %w", err)
	}

	return !ok, nil
}

// DiscoverOpened finds a path of an opened Node Store and returns its path.
// If multiple nodes are running, it only returns the path of the first found
// node. Network is favored over node type.
//
// Network preference order: Polkadot, Kusama, Westend, Private
// Type preference order: Full, Authority
func DiscoverOpened() (string, error) {
	networks := p2p.GetNetworks()
	nodeTypes := node.GetTypes()

	for _, n := range networks {
		for _, tp := range nodeTypes {
			path, err := DefaultNodeStorePath(tp, n)
			if err != nil {
				return "", err
			}

			ok, err := IsOpened(path)
			if err != nil {
				return "", err
			}
			if ok {
				return path, nil
			}
		}
	}

	return "", ErrNoOpenStore
}

// DefaultNodeStorePath constructs the default node store path using the given
// node type and network.
var DefaultNodeStorePath = func(tp node.Type, network p2p.Network) (string, error) {
	home := os.Getenv("KAGOME_HOME")

	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
	}
	if network == p2p.Polkadot {
		return fmt.Sprintf("%s/.kagome-%s", home, strings.ToLower(tp.String())), nil
	}
	// only include network name in path for testnets and custom networks
	return fmt.Sprintf(
		"%s/.kagome-%s-%s",
		home,
		strings.ToLower(tp.String()),
		strings.ToLower(network.String()),
	), nil
}

func (f *fsStore) Path() string {
	return f.path
}

func (f *fsStore) Config() (*Config, error) {
	cfg, err := LoadConfig(configPath(f.path))
	if err != nil {
		return nil, fmt.Errorf("node: load config: %w", err)
	}
	return cfg, nil
}

func (f *fsStore) PutConfig(cfg *Config) error {
	if err := SaveConfig(configPath(f.path), cfg); err != nil {
		return fmt.Errorf("node: save config: %w", err)
	}
	return nil
}

func (f *fsStore) Keystore() (keystore.Keystore, error) {
	if f.keys == nil {
		return nil, fmt.Errorf("node: store has no keystore")
	}
	return f.keys, nil
}

// Datastore opens the Badger store lazily on first use and hands the same
// instance to every caller after.
func (f *fsStore) Datastore() (datastore.Batching, error) {
	f.dataMu.Lock()
	defer f.dataMu.Unlock()
	if f.data != nil {
		return f.data, nil
	}

	// DefaultOptions is a value, mutating the copy is safe
	opts := dsbadger.DefaultOptions
	// every key is written once, conflict detection only costs memory here
	opts.DetectConflicts = false
	// the store keeps small peer and key records only, so garbage collect
	// rarely and skip compression, it would only add CPU cost here
	opts.GcInterval = time.Hour
	opts.Compression = options.None

	ds, err := dsbadger.NewDatastore(dataPath(f.path), &opts)
	if err != nil {
		return nil, fmt.Errorf("node: open badger datastore: %w", err)
	}

	f.data = ds
	return ds, nil
}

func (f *fsStore) Close() (err error) {
	err = errors.Join(err, f.dirLock.Unlock())
	f.dataMu.Lock()
	if f.data != nil {
		err = errors.Join(err, f.data.Close())
	}
	f.dataMu.Unlock()
	return err
}

func storePath(path string) (string, error) {
	return homedir.Expand(filepath.Clean(path))
}

func configPath(base string) string {
	return filepath.Join(base, "config.toml")
}

func lockPath(base string) string {
	return filepath.Join(base, "lock")
}

func keysPath(base string) string {
	return filepath.Join(base, "keys")
}

func dataPath(base string) string {
	return filepath.Join(base, "data")
}
