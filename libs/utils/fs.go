package utils

import "os"

// Exists reports whether anything, file or directory, sits at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
