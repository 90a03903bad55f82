package cassandra

import "errors"
import "fmt"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoSession         = errors.New("no cassandra session")
	ErrSessionClosed     = errors.New("session closed")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

type WrappedError struct {
	err     error
	wrapped error
}

func WrapError(msg string, err error) error { return WrappedError{errors.New(msg), err} }
func (wrap WrappedError) Error() string     { return fmt.Sprintf("%s: %s", wrap.err, wrap.wrapped) }
func (wrap WrappedError) Unwrap() error     { return wrap.wrapped }
