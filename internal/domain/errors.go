package domain

import "fmt"

// NotFoundError signals a missing stored resource (collection record, auth
// key). Repositories translate their driver-level not-found errors into this
// type so callers can branch without knowing the storage engine.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching regardless of which Resource was missing.
func (e NotFoundError) Is(target error) bool {
	if _, ok := target.(NotFoundError); ok {
		return true
	}
	_, ok := target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel for errors.Is checks.
var ErrNotFound = NotFoundError{}
