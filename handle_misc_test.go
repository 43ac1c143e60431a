package ftpd

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemAndNoop(t *testing.T) {
	raw := newClientWithRawConn(t)

	sendAndCheck(t, raw, "SYST", StatusSystemType)
	sendAndCheck(t, raw, "NOOP", StatusOK)
}

func TestFeatAndOpts(t *testing.T) {
	raw := newClientWithRawConn(t)

	sendAndCheck(t, raw, "FEAT", StatusSystemStatus)
	sendAndCheck(t, raw, "OPTS UTF8 ON", StatusOK)
	sendAndCheck(t, raw, "OPTS BOGUS", StatusSyntaxErrorNotRecognised)
}

func TestTypeModeStru(t *testing.T) {
	raw := newClientWithRawConn(t)

	sendAndCheck(t, raw, "TYPE A", StatusOK)
	sendAndCheck(t, raw, "TYPE I", StatusOK)
	sendAndCheck(t, raw, "TYPE E", StatusSyntaxErrorParameters)

	sendAndCheck(t, raw, "MODE S", StatusOK)
	sendAndCheck(t, raw, "MODE B", StatusNotImplementedParam)

	sendAndCheck(t, raw, "STRU F", StatusOK)
	sendAndCheck(t, raw, "STRU R", StatusNotImplementedParam)
}

func TestAlloAndStatNoArg(t *testing.T) {
	raw := newClientWithRawConn(t)

	sendAndCheck(t, raw, "ALLO 1024", StatusOK)
	sendAndCheck(t, raw, "STAT", StatusSystemStatus)
	sendAndCheck(t, raw, "STAT /", StatusCommandNotImplemented)
}

func TestAborWithNoTransfer(t *testing.T) {
	raw := newClientWithRawConn(t)

	sendAndCheck(t, raw, "ABOR", StatusClosingDataConn)
}

// TestAborDuringActiveTransferDefersToCloseTransfer verifies that ABOR
// stays silent when a transfer command's goroutine is running: that
// goroutine's io.Copy fails against the closed connection and closeTransfer
// writes the terminal 426/226 pair. handleABOR writing its own reply on
// top would desync a client reading one reply per command.
func TestAborDuringActiveTransferDefersToCloseTransfer(t *testing.T) {
	var buf bytes.Buffer

	c := &session{writer: bufio.NewWriter(&buf)}
	c.transferActive = true

	c.handleABOR("")

	require.Empty(t, buf.String())
}

func TestAborWithNoActiveTransferWritesItsOwnReply(t *testing.T) {
	var buf bytes.Buffer

	c := &session{writer: bufio.NewWriter(&buf)}

	c.handleABOR("")

	require.Equal(t, "226 ABOR command successful\r\n", buf.String())
}
