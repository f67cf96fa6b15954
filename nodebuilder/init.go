package nodebuilder

import (
	"os"
	"path/filepath"

	"github.com/rotkonetworks/kagome/libs/utils"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

const dirPerms = 0755

// Init initializes the Node FileSystem Store for the given Node Type 'tp' in
// the directory under 'path'.
func Init(cfg Config, path string, tp node.Type) error {
	path, err := storePath(path)
	if err != nil {
		return err
	}
	log.Infof("Initializing %s Node Store over '%s'", tp, path)

	// the root must exist before the lock file can
	if err := initRoot(path); err != nil {
		return err
	}

	return withLockedStore(path, func(storePath string) error {
		for _, dir := range []string{keysPath(storePath), dataPath(storePath)} {
			if err := initDir(dir); err != nil {
				return err
			}
		}

		cfgPath := configPath(storePath)
		if err := SaveConfig(cfgPath, &cfg); err != nil {
			return err
		}
		log.Infow("Saving config", "path", cfgPath)
		log.Info("Node Store initialized")
		return nil
	})
}

// Reset clears the data directory of the Store, leaving keystore and config
// intact.
func Reset(path string, tp node.Type) error {
	path, err := storePath(path)
	if err != nil {
		return err
	}
	log.Infof("Resetting %s Node Store over '%s'", tp, path)

	return withLockedStore(path, func(storePath string) error {
		if err := resetDir(dataPath(storePath)); err != nil {
			return err
		}
		log.Info("Node Store reset")
		return nil
	})
}

// IsInit reports whether a usable Store exists under the given 'path': a
// loadable config plus the keys and data subdirectories.
func IsInit(path string) bool {
	path, err := storePath(path)
	if err != nil {
		log.Errorw("parsing store path", "path", path, "err", err)
		return false
	}

	if _, err := LoadConfig(configPath(path)); err != nil {
		log.Errorw("loading config", "path", path, "err", err)
		return false
	}

	return utils.Exists(keysPath(path)) && utils.Exists(dataPath(path))
}

// initRoot creates the root directory and verifies it is writable.
func initRoot(path string) error {
	if err := initDir(path); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(path, ".check"))
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(f.Name())
}

func initDir(path string) error {
	if utils.Exists(path) {
		return nil
	}
	return os.Mkdir(path, dirPerms)
}

// resetDir wipes the given directory and recreates it empty.
func resetDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return initDir(path)
}
