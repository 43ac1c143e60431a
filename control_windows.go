package ftpd

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// reuseAddrControl is used as a net.Dialer's Control function so active-mode
// data connections can rebind the port a previous transfer on this session
// used, instead of exhausting the ephemeral range under heavy transfer churn.
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var errSetOpts error

	err := c.Control(func(fd uintptr) {
		errSetOpts = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}

	return errSetOpts
}
