package ftpd

import (
	"errors"
	"fmt"
	"os"
)

// ErrPermissionDenied is the reason given when a mutating command is refused
// because the server is running in ReadOnly mode (see checkWritable).
// Handlers map it to 550.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNoTransferConnection is returned when a transfer command is attempted
// with no PASV/PORT endpoint established.
var ErrNoTransferConnection = errors.New("no data connection established")

// DriverError wraps any error returned by the MainDriver (settings,
// authentication). Unwrap() exposes the underlying cause.
type DriverError struct {
	str string
	err error
}

func newDriverError(str string, err error) DriverError {
	return DriverError{str: str, err: err}
}

func (e DriverError) Error() string {
	return fmt.Sprintf("driver error: %s: %v", e.str, e.err)
}

func (e DriverError) Unwrap() error {
	return e.err
}

// NetworkError wraps any error coming from the control or data channel
// networking layer (listen, accept, dial).
type NetworkError struct {
	str string
	err error
}

func newNetworkError(str string, err error) NetworkError {
	return NetworkError{str: str, err: err}
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.str, e.err)
}

func (e NetworkError) Unwrap() error {
	return e.err
}

// FileAccessError wraps any error coming from a ClientDriver filesystem
// call (open, stat, mkdir, ...).
type FileAccessError struct {
	str string
	err error
}

func newFileAccessError(str string, err error) FileAccessError {
	return FileAccessError{str: str, err: err}
}

func (e FileAccessError) Error() string {
	return fmt.Sprintf("file access error: %s: %v", e.str, e.err)
}

func (e FileAccessError) Unwrap() error {
	return e.err
}

// replyCodeFor maps an error returned by a ClientDriver or MainDriver call
// to the reply code the handler should send. Unrecognized errors fall
// back to 451.
func replyCodeFor(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrPermissionDenied):
		return StatusActionNotTaken
	case errors.Is(err, os.ErrNotExist):
		return StatusActionNotTaken
	case errors.Is(err, os.ErrExist):
		return StatusActionNotTaken
	case errors.Is(err, ErrNoTransferConnection):
		return StatusCannotOpenDataConnection
	default:
		return StatusActionAborted
	}
}

// fileErrorMessage renders a human-readable reason for a 550-class error,
// distinguishing "not found" from other kinds.
func fileErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, os.ErrNotExist):
		return "File not found"
	case errors.Is(err, os.ErrExist):
		return "Directory exists"
	default:
		return err.Error()
	}
}
