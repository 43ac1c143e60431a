// Package fs provides a MainDriver backed by the local filesystem, one
// chrooted afero.BasePathFs directory per configured account.
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	log "github.com/fclairamb/go-log"
	lognoop "github.com/fclairamb/go-log/noop"
	"github.com/spf13/afero"

	"github.com/goftpd/ftpd"
)

// Account is one configured FTP login: a username/password pair and the
// subdirectory of RootDir that user is chrooted into.
type Account struct {
	User string `toml:"user"`
	Pass string `toml:"pass"`
	Dir  string `toml:"dir"`
}

// ErrNoUsers is returned by GetSettings when no account is configured;
// an FTP server with no possible login isn't a useful configuration.
var ErrNoUsers = errors.New("at least one user must be configured")

// errAuthFailed is returned by AuthUser on a username/password mismatch.
var errAuthFailed = errors.New("invalid username or password")

// Driver is a ftpd.MainDriver that serves each account a directory of the
// local filesystem, rooted at RootDir/<account.Dir>.
type Driver struct {
	Logger    log.Logger
	RootDir   string
	Users     []Account
	Settings  *ftpd.Settings
	nbClients int32
}

// GetSettings returns the configured server settings, or an empty Settings
// if none were given; ftpd.Server.Listen fills in defaults for zero fields.
func (d *Driver) GetSettings() (*ftpd.Settings, error) {
	if len(d.Users) == 0 {
		return nil, ErrNoUsers
	}

	if d.Settings == nil {
		d.Settings = &ftpd.Settings{}
	}

	if d.Logger == nil {
		d.Logger = lognoop.NewNoOpLogger()
	}

	return d.Settings, nil
}

// ClientConnected greets the client and reports how many clients are
// currently connected.
func (d *Driver) ClientConnected(cc ftpd.ClientContext) (string, error) {
	n := atomic.AddInt32(&d.nbClients, 1)

	d.Logger.Info("client connected", "clientId", cc.ID(), "clients", n)

	return fmt.Sprintf("Welcome, connection #%d, clients online: %d", cc.ID(), n), nil
}

// ClientDisconnected decrements the connected-client count.
func (d *Driver) ClientDisconnected(cc ftpd.ClientContext) {
	n := atomic.AddInt32(&d.nbClients, -1)

	d.Logger.Info("client disconnected", "clientId", cc.ID(), "clients", n)
}

// AuthUser validates credentials by a linear scan over the configured
// accounts and returns a filesystem chrooted to that account's directory,
// creating it on first login if it doesn't exist yet.
func (d *Driver) AuthUser(cc ftpd.ClientContext, user, pass string) (ftpd.ClientDriver, error) {
	for _, account := range d.Users {
		if account.User != user || account.Pass != pass {
			continue
		}

		dir := filepath.Join(d.RootDir, account.Dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not prepare home directory for %s: %w", user, err)
		}

		return afero.NewBasePathFs(afero.NewOsFs(), dir), nil
	}

	return nil, errAuthFailed
}
