package mcpserver

import (
	"fmt"
)

// ErrResourceNotFound is returned by GetResource for an unregistered uri,
// a typed sentinel rather than a string match.
type ErrResourceNotFound struct {
	URI string
}

func (e *ErrResourceNotFound) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URI)
}
