package ftpd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreThenRetrieveIsByteExact(t *testing.T) {
	client := newTestClient(t)

	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 1000)

	require.NoError(t, client.Store("data.bin", bytes.NewReader(payload)))

	var buf bytes.Buffer
	require.NoError(t, client.Retrieve("data.bin", &buf))

	require.Equal(t, payload, buf.Bytes())
}

func TestRetrieveMissingFileFails(t *testing.T) {
	client := newTestClient(t)

	var buf bytes.Buffer
	err := client.Retrieve("missing.bin", &buf)
	require.Error(t, err)
}

func TestDeleteFile(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Store("gone.bin", bytes.NewReader([]byte("bye"))))
	require.NoError(t, client.Delete("gone.bin"))

	var buf bytes.Buffer
	require.Error(t, client.Retrieve("gone.bin", &buf))
}

func TestRenameFile(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Store("old.bin", bytes.NewReader([]byte("payload"))))
	require.NoError(t, client.Rename("old.bin", "new.bin"))

	var buf bytes.Buffer
	require.NoError(t, client.Retrieve("new.bin", &buf))
	require.Equal(t, "payload", buf.String())
}

func TestRenameWithoutRNFRFails(t *testing.T) {
	raw := newClientWithRawConn(t)
	sendAndCheck(t, raw, "USER "+testUser, StatusUserOK)
	sendAndCheck(t, raw, "PASS "+testPass, StatusUserLoggedIn)

	sendAndCheck(t, raw, "RNTO target.bin", StatusBadCommandSequence)
}

func TestRenamePendingStateCancelledByInterveningCommand(t *testing.T) {
	raw := newClientWithRawConn(t)
	sendAndCheck(t, raw, "USER "+testUser, StatusUserOK)
	sendAndCheck(t, raw, "PASS "+testPass, StatusUserLoggedIn)
	sendAndCheck(t, raw, "MKD /src", StatusPathCreated)

	sendAndCheck(t, raw, "RNFR /src", StatusFileActionPending)
	sendAndCheck(t, raw, "NOOP", StatusOK)
	sendAndCheck(t, raw, "RNTO /dst", StatusBadCommandSequence)
}

func TestSizeAndMDTM(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Store("sized.bin", bytes.NewReader([]byte("12345"))))

	raw, err := client.OpenRawConn()
	require.NoError(t, err)

	t.Cleanup(func() { _ = raw.Close() })

	sendAndCheck(t, raw, "USER "+testUser, StatusUserOK)
	sendAndCheck(t, raw, "PASS "+testPass, StatusUserLoggedIn)

	code, msg, err := raw.SendCommand("SIZE /sized.bin")
	require.NoError(t, err)
	require.Equal(t, StatusFileStatus, code)
	require.Equal(t, "5", msg)

	code, _, err = raw.SendCommand("MDTM /sized.bin")
	require.NoError(t, err)
	require.Equal(t, StatusFileStatus, code)
}

func TestRestRejectsNegativeOffset(t *testing.T) {
	raw := newClientWithRawConn(t)
	sendAndCheck(t, raw, "USER "+testUser, StatusUserOK)
	sendAndCheck(t, raw, "PASS "+testPass, StatusUserLoggedIn)

	sendAndCheck(t, raw, "REST 0", StatusFileActionPending)
	sendAndCheck(t, raw, "NOOP", StatusOK)

	code, _, err := raw.SendCommand("REST -1")
	require.NoError(t, err)
	require.Equal(t, StatusSyntaxErrorParameters, code)
}
