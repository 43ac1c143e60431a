package ftpd

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplyCodeFor(t *testing.T) {
	require.Equal(t, StatusOK, replyCodeFor(nil))
	require.Equal(t, StatusActionNotTaken, replyCodeFor(ErrPermissionDenied))
	require.Equal(t, StatusActionNotTaken, replyCodeFor(os.ErrNotExist))
	require.Equal(t, StatusActionNotTaken, replyCodeFor(os.ErrExist))
	require.Equal(t, StatusCannotOpenDataConnection, replyCodeFor(ErrNoTransferConnection))
	require.Equal(t, StatusActionAborted, replyCodeFor(errors.New("boom")))
}

func TestFileErrorMessage(t *testing.T) {
	require.Equal(t, "Permission denied", fileErrorMessage(ErrPermissionDenied))
	require.Equal(t, "File not found", fileErrorMessage(os.ErrNotExist))
	require.Equal(t, "Directory exists", fileErrorMessage(os.ErrExist))
	require.Equal(t, "boom", fileErrorMessage(errors.New("boom")))
}

func TestDriverErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := newDriverError("could not load settings", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "disk full")
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := newNetworkError("could not dial", cause)
	require.ErrorIs(t, err, cause)
}

func TestFileAccessErrorUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := newFileAccessError("could not open", cause)
	require.ErrorIs(t, err, cause)
}
