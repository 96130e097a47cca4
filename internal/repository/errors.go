package repository

import "fmt"

// StorageError marks local store corruption or failure. It is fatal to
// the operation that hit it and must surface to the caller; the sync
// engine aborts the whole cycle on it rather than retrying blindly.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
