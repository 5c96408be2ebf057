// Package plugins implements the plugin manifest/config lifecycle: manifest
// registration with schema evolution, per-user installation with atomic
// config resolution, and read-side views of installed plugins.
package plugins

import (
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is what callers match against when a plugin or installation
// row is absent. Storage code returns gorm's sentinel directly so nothing
// gets wrapped between the query site and the HTTP boundary.
var ErrNotFound = gorm.ErrRecordNotFound

// MissingRequiredFieldError aborts an install when a required config field
// resolves to no value. The whole transaction rolls back; the field is never
// silently skipped.
type MissingRequiredFieldError struct {
	Key string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required config field %q", e.Key)
}
