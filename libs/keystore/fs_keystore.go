package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fsKeystore implements persistent Keystore over OS filesystem.
type fsKeystore struct {
	path string
}

// NewFSKeystore creates a new Keystore over the given directory, creating
// the directory if necessary.
func NewFSKeystore(path string) (Keystore, error) {
	err := os.Mkdir(path, 0755)
	if err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("keystore: failed to make a dir: %w", err)
	}

	return &fsKeystore{path: path}, nil
}

func (f *fsKeystore) Put(n KeyName, k PrivKey) error {
	path := f.pathTo(n.Base32())

	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("keystore: key '%s' already exists", n)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("keystore: check before writing key '%s' failed: %w", n, err)
	}

	data, err := json.Marshal(k)
	if err != nil {
		return fmt.Errorf("keystore: failed to marshal key '%s': %w", n, err)
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		return fmt.Errorf("keystore: failed to write key '%s': %w", n, err)
	}

	return nil
}

func (f *fsKeystore) Get(n KeyName) (PrivKey, error) {
	path := f.pathTo(n.Base32())

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return PrivKey{}, fmt.Errorf("%w: %s", ErrNotFound, n)
		}
		return PrivKey{}, fmt.Errorf("keystore: check before reading key '%s' failed: %w", n, err)
	}

	if err := keyAccess(path); err != nil {
		return PrivKey{}, fmt.Errorf("keystore: refusing to read key '%s': %w", n, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PrivKey{}, fmt.Errorf("keystore: failed to read key '%s': %w", n, err)
	}

	var key PrivKey
	err = json.Unmarshal(data, &key)
	if err != nil {
		return PrivKey{}, fmt.Errorf("keystore: failed to unmarshal key '%s': %w", n, err)
	}

	return key, nil
}

func (f *fsKeystore) Delete(n KeyName) error {
	path := f.pathTo(n.Base32())

	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, n)
		}
		return fmt.Errorf("keystore: failed to delete key '%s': %w", n, err)
	}

	return nil
}

func (f *fsKeystore) List() ([]KeyName, error) {
	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, fmt.Errorf("keystore: failed to read dir: %w", err)
	}

	keys := make([]KeyName, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// stray files that are not base32 encoded are not ours
		name, err := KeyNameFromBase32(entry.Name())
		if err != nil {
			continue
		}
		keys = append(keys, name)
	}

	return keys, nil
}

func (f *fsKeystore) Path() string {
	return f.path
}

func (f *fsKeystore) pathTo(file string) string {
	return filepath.Join(f.path, file)
}
