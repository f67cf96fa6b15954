//go:build darwin || freebsd || linux

package keystore

import (
	"fmt"
	"os"
)

// keyAccess checks whether the file is accessible only by its owner.
func keyAccess(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := st.Mode()
	if mode&0077 != 0 {
		return fmt.Errorf("required: 0600, got: %#o", mode)
	}

	return nil
}
