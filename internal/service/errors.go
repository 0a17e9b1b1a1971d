package service

import "errors"

// Client errors. They carry no side effects and map to 4xx responses.
var (
	ErrFilenameRequired = errors.New("filename is required")
	ErrJobIDRequired    = errors.New("job id is required")
	ErrNotFound         = errors.New("job not found")
)

// Operation names used in DependencyError.
const (
	OpCreateRecord = "create job record"
	OpPresignURL   = "generate upload URL"
	OpReadJob      = "read job"
	OpPingStore    = "ping record store"
)

// DependencyError reports a failed call to the record store or the object store.
// Op identifies the failed step; Err keeps the dependency's own error for logs.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
