package engine

import "fmt"

// NotFoundError indicates a referenced template, instance, or completion
// id does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ValidationError indicates malformed input, or a completion id that does
// not belong to the stated instance.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

// TransitionError indicates an operation attempted from a state that
// forbids it (upgrade when not eligible, complete when under the gate,
// complete or delete when already completed).
type TransitionError struct {
	Op     string
	Reason string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}

// StoreError wraps a storage read/write failure. It is always surfaced to
// the caller; the engine never retries on its own.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return StoreError{Op: op, Err: err}
}
