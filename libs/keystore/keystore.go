package keystore

import (
	"errors"
	"fmt"

	"github.com/multiformats/go-base32"
)

// ErrNotFound is returned when the requested key is not in the Keystore.
var ErrNotFound = errors.New("keystore: key not found")

// KeyName represents private key name.
type KeyName string

// String returns string representation of KeyName.
func (k KeyName) String() string {
	return string(k)
}

// Base32 formats KeyName to base32 standard.
func (k KeyName) Base32() string {
	return base32.RawStdEncoding.EncodeToString([]byte(k))
}

// KeyNameFromBase32 decodes KeyName from base32 format.
func KeyNameFromBase32(bs string) (KeyName, error) {
	name, err := base32.RawStdEncoding.DecodeString(bs)
	if err != nil {
		return "", fmt.Errorf("keystore: can't convert base32 string to key name: %w", err)
	}

	return KeyName(name), nil
}

// PrivKey is a private key with arbitrary body.
type PrivKey struct {
	Body []byte `json:"body"`
}

// Keystore is meant to manage private keys.
type Keystore interface {
	// Put stores given PrivKey.
	Put(KeyName, PrivKey) error

	// Get reads PrivKey using given KeyName.
	Get(KeyName) (PrivKey, error)

	// Delete erases PrivKey using given KeyName.
	Delete(name KeyName) error

	// List lists all stored key names.
	List() ([]KeyName, error)

	// Path reports the path of the Keystore.
	Path() string
}
