package ftpd

import (
	"errors"
	"io"
	"testing"

	"github.com/secsy/goftp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	lognoop "github.com/fclairamb/go-log/noop"
)

const (
	testUser = "test"
	testPass = "test"
)

// testDriver is a minimal MainDriver/ClientDriver backed by an in-memory
// filesystem, so tests never touch disk.
type testDriver struct {
	settings *Settings
	fs       afero.Fs
}

var errBadCredentials = errors.New("bad username or password")

func newTestDriver() *testDriver {
	return &testDriver{
		settings: &Settings{ListenAddr: "127.0.0.1:0"},
		fs:       afero.NewMemMapFs(),
	}
}

func (d *testDriver) GetSettings() (*Settings, error) {
	return d.settings, nil
}

func (d *testDriver) ClientConnected(cc ClientContext) (string, error) {
	return "TEST Server", nil
}

func (d *testDriver) ClientDisconnected(cc ClientContext) {}

func (d *testDriver) AuthUser(cc ClientContext, user, pass string) (ClientDriver, error) {
	if user == testUser && pass == testPass {
		return d.fs, nil
	}

	return nil, errBadCredentials
}

// newTestServer starts a Server backed by testDriver on a loopback
// ephemeral port and stops it when the test finishes.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	driver := newTestDriver()
	s := NewServer(driver)
	s.Logger = lognoop.NewNoOpLogger()

	require.NoError(t, s.Listen())

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, io.EOF) {
			s.Logger.Error("test server stopped", "err", err)
		}
	}()

	t.Cleanup(func() {
		_ = s.Stop()
	})

	return s
}

// newTestClient dials a freshly started test server with a real FTP
// client, authenticating as testUser.
func newTestClient(t *testing.T) *goftp.Client {
	t.Helper()

	s := newTestServer(t)

	client, err := goftp.DialConfig(goftp.Config{User: testUser, Password: testPass}, s.Addr())
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// newClientWithRawConn dials a freshly started test server and returns a
// raw control connection for tests that need to send arbitrary commands.
func newClientWithRawConn(t *testing.T) goftp.RawConn {
	t.Helper()

	s := newTestServer(t)

	client, err := goftp.DialConfig(goftp.Config{User: testUser, Password: testPass}, s.Addr())
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	raw, err := client.OpenRawConn()
	require.NoError(t, err)

	t.Cleanup(func() { _ = raw.Close() })

	return raw
}

func sendAndCheck(t *testing.T, raw goftp.RawConn, cmd string, expected int) {
	t.Helper()

	code, _, err := raw.SendCommand(cmd)
	require.NoError(t, err)
	require.Equal(t, expected, code)
}
