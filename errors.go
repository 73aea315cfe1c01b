package buildcache

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidKeyRequest is returned when a key is requested with no
	// fingerprintable inputs: the selector does not apply to the unit and
	// no extra fingerprint was supplied. Such a key would make every
	// build look either permanently cached or permanently stale.
	ErrInvalidKeyRequest = errors.New("key needs an applicable source selector or an extra fingerprint")
)

// TraversalError is returned by Update when an artifact's relative
// destination would escape the cache entry directory. The update aborts
// before any further writes and no marker is recorded.
type TraversalError struct {
	Artifact string // the offending artifact path
	Rel      string // its computed destination relative to the entry
}

// Error implements the error interface.
func (e *TraversalError) Error() string {
	return fmt.Sprintf("artifact %s escapes the cache entry (resolved to %s)", e.Artifact, e.Rel)
}
