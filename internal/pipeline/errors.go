// ABOUTME: Error types surfaced by the orchestrator.
// ABOUTME: Storage failures are distinct from extraction failures so callers can report them separately.
package pipeline

import (
	"errors"
	"fmt"
)

// StorageError reports a metric store failure after extraction succeeded.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("metric store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageFailure reports whether err came from the metric store.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
