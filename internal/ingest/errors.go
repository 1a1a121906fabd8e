package ingest

import (
	"errors"
	"fmt"
)

// ErrValidation marks a malformed request. Validation failures are
// surfaced to the caller before any ingestion work starts and are never
// retried.
var ErrValidation = errors.New("invalid ingestion request")

var (
	ErrNoDocuments        = fmt.Errorf("%w: documents must not be empty", ErrValidation)
	ErrMissingCommunityID = fmt.Errorf("%w: communityId is required", ErrValidation)
	ErrMissingPlatformID  = fmt.Errorf("%w: platformId is required", ErrValidation)
)

// PermanentError wraps a failure of the external ingestion operation
// that retrying cannot fix (e.g. a document rejected by the pipeline).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked non-retryable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
