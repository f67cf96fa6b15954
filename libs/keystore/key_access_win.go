//go:build windows

package keystore

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// keyAccess checks whether the file is accessible only by its owner.
func keyAccess(path string) error {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.DACL_SECURITY_INFORMATION)
	if err != nil {
		return fmt.Errorf("reading file security info: %w", err)
	}
	defer func() {
		if err != nil {
			_, _ = windows.LocalFree((windows.Handle)(unsafe.Pointer(sd)))
		}
	}()

	if _, _, err = sd.DACL(); err != nil {
		return fmt.Errorf("file has no DACL restricting access: %w", err)
	}

	return nil
}
