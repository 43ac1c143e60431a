package ftpd

import (
	"fmt"
)

// checkWritable rejects a mutating command when the server was configured
// ReadOnly, writing the 550 reply itself. Callers that return early on
// false don't need to write their own reply.
func (c *session) checkWritable() bool {
	if c.server.settings.ServerType == ReadOnly {
		c.writeMessage(StatusActionNotTaken, fileErrorMessage(ErrPermissionDenied))
		return false
	}

	return true
}

func (c *session) handleCWD(arg string) {
	p := c.absPath(arg)

	if _, err := c.driver.Stat(toBackendPath(p)); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Can't change directory to %s: %s", p, fileErrorMessage(err)))
		return
	}

	c.setPath(p)
	c.writeMessage(StatusFileOK, fmt.Sprintf("CWD command successful, cwd=%s", p))
}

func (c *session) handleCDUP(arg string) {
	parent := parentOf(c.Path())

	if _, err := c.driver.Stat(toBackendPath(parent)); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Can't change directory to %s: %s", parent, fileErrorMessage(err)))
		return
	}

	c.setPath(parent)
	c.writeMessage(StatusFileOK, fmt.Sprintf("CDUP command successful, cwd=%s", parent))
}

func (c *session) handlePWD(arg string) {
	c.writeMessage(StatusPathCreated, fmt.Sprintf("\"%s\" is the current directory", quoteDoubling(c.Path())))
}

func (c *session) handleMKD(arg string) {
	if !c.checkWritable() {
		return
	}

	p := c.absPath(arg)

	if err := c.driver.Mkdir(toBackendPath(p), 0o755); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not create %s: %s", p, fileErrorMessage(err)))
		return
	}

	c.writeMessage(StatusPathCreated, fmt.Sprintf("\"%s\" directory created", quoteDoubling(p)))
}

func (c *session) handleRMD(arg string) {
	if !c.checkWritable() {
		return
	}

	p := c.absPath(arg)

	if err := c.driver.Remove(toBackendPath(p)); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not remove directory %s: %s", p, fileErrorMessage(err)))
		return
	}

	c.writeMessage(StatusFileOK, fmt.Sprintf("Removed directory %s", p))
}

func (c *session) handleLIST(arg string) {
	p := c.absPath(arg)

	entries, err := listEntries(c.driver, toBackendPath(p))
	if err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not list %s: %s", p, fileErrorMessage(err)))
		return
	}

	conn, err := c.openTransfer(fmt.Sprintf("LIST for %s", p))
	if err != nil {
		return
	}

	_, werr := conn.Write([]byte(formatList(entries)))
	c.closeTransfer(werr)
}

func (c *session) handleNLST(arg string) {
	p := c.absPath(arg)

	entries, err := listEntries(c.driver, toBackendPath(p))
	if err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not list %s: %s", p, fileErrorMessage(err)))
		return
	}

	conn, err := c.openTransfer(fmt.Sprintf("NLST for %s", p))
	if err != nil {
		return
	}

	_, werr := conn.Write([]byte(formatNLST(entries)))
	c.closeTransfer(werr)
}
