package ftpd

import (
	"testing"

	"github.com/secsy/goftp"
	"github.com/stretchr/testify/require"
)

func TestAuthSuccess(t *testing.T) {
	client := newTestClient(t)

	_, err := client.ReadDir("/")
	require.NoError(t, err)
}

func TestAuthFailure(t *testing.T) {
	s := newTestServer(t)

	client, err := goftp.DialConfig(goftp.Config{User: testUser, Password: "wrong-password"}, s.Addr())
	require.NoError(t, err) // DialConfig only fails on malformed addresses; auth happens lazily

	_, err = client.ReadDir("/")
	require.Error(t, err)

	_ = client.Close()
}

func TestSYST(t *testing.T) {
	raw := newClientWithRawConn(t)
	sendAndCheck(t, raw, "SYST", StatusSystemType)
}

func TestStopIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.Stop())
	require.ErrorIs(t, s.Stop(), ErrNotListening)
}

func TestStopBeforeListen(t *testing.T) {
	driver := newTestDriver()
	s := NewServer(driver)

	require.ErrorIs(t, s.Stop(), ErrNotListening)
}
