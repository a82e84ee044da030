// Package storage holds the photo store backends: a local directory and
// Amazon S3 (or a compatible API).
package storage

import (
	"fmt"
	"strings"
)

// validName rejects names that could escape the store's namespace.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("storage: invalid object name %q", name)
	}
	return nil
}
