//go:build linux || freebsd || darwin || aix || dragonfly || netbsd || openbsd
// +build linux freebsd darwin aix dragonfly netbsd openbsd

package ftpd

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrControl is used as a net.Dialer's Control function so active-mode
// data connections can rebind the port a previous transfer on this session
// used, instead of exhausting the ephemeral range under heavy transfer churn.
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var errSetOpts error

	err := c.Control(func(fd uintptr) {
		errSetOpts = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if errSetOpts != nil {
			return
		}

		errSetOpts = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return fmt.Errorf("unable to set control options: %w", err)
	}

	if errSetOpts != nil {
		return fmt.Errorf("unable to set control options: %w", errSetOpts)
	}

	return nil
}
