// Package ftpd provides the tools to build an FTP server: a core protocol
// engine (command parsing/dispatch, path virtualization, directory
// listing, data channel negotiation, session state machine) plus a small
// Driver interface that a caller implements to plug in authentication and
// a filesystem.
package ftpd

import (
	"net"

	"github.com/spf13/afero"
)

// MainDriver handles server-wide concerns: settings, the welcome banner,
// and authenticating a client into a per-session ClientDriver.
type MainDriver interface {
	// GetSettings returns the general settings for the server. Called once,
	// before the listener is created.
	GetSettings() (*Settings, error)

	// ClientConnected is called right after a TCP connection is accepted,
	// before any command is read. Its return value becomes the text of the
	// 220 greeting.
	ClientConnected(cc ClientContext) (string, error)

	// ClientDisconnected is called when a session ends, whether or not the
	// client ever authenticated.
	ClientDisconnected(cc ClientContext)

	// AuthUser validates user/pass and returns the ClientDriver that will
	// serve this session's filesystem operations.
	AuthUser(cc ClientContext, user, pass string) (ClientDriver, error)
}

// ClientDriver is the filesystem view exposed to one authenticated session.
// afero.Fs already provides list/stat/open/mkdir/rmdir/delete/rename, so no
// additional methods are required of the implementer.
type ClientDriver interface {
	afero.Fs
}

// ClientContext exposes to a MainDriver the subset of session state it is
// allowed to read or change.
type ClientContext interface {
	// Path is the session's current virtual working directory.
	Path() string

	// ID is this client's sequential connection number.
	ID() uint32

	// RemoteAddr is the client's address.
	RemoteAddr() net.Addr

	// LocalAddr is the server-side address of this connection.
	LocalAddr() net.Addr

	// Close disconnects the client immediately.
	Close() error
}

// PortRange restricts passive-mode listener allocation to a fixed range of
// local ports, so the range can be opened through a firewall.
type PortRange struct {
	Start int
	End   int
}

// ServerType selects whether the server accepts mutating commands.
type ServerType int

// Supported server types.
const (
	ReadWrite ServerType = iota
	ReadOnly
)

// Settings holds the process-wide, immutable-after-start configuration.
type Settings struct {
	ListenAddr               string       // TCP address to listen on, e.g. "0.0.0.0:2121"
	PublicHost               string       // Public IP to advertise in PASV replies, if different from the local address
	PassiveTransferPortRange *PortRange   // Port range for passive data connections; random if nil
	IdleTimeout              int          // Seconds of control-channel inactivity before disconnecting; default 900
	ConnectionTimeout        int          // Seconds to wait for a passive/active data connection; default 30
	Banner                   string       // Text included in the STAT reply; the 220 greeting text comes from MainDriver.ClientConnected
	ServerType               ServerType   // ReadWrite or ReadOnly
	DefaultTransferType      TransferType // Transfer type assumed before the client sends TYPE
}
