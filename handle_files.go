package ftpd

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// transferFile drives one STOR/APPE/RETR: it opens the backend file with
// the given flags, honors a pending REST offset, opens the negotiated
// data connection, and streams bytes through an ASCII converter when the
// session is in ASCII mode.
func (c *session) transferFile(arg string, flag int, verb string) {
	p := c.absPath(arg)
	backend := toBackendPath(p)

	file, err := c.driver.OpenFile(backend, flag, 0o644)
	if err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not open %s: %s", p, fileErrorMessage(err)))
		return
	}
	defer file.Close()

	offset := c.restOffset
	c.restOffset = 0

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			c.writeMessage(StatusActionNotTaken, fmt.Sprintf("Could not seek to %d: %v", offset, err))
			return
		}
	}

	conn, err := c.openTransfer(fmt.Sprintf("%s of %s", verb, p))
	if err != nil {
		return
	}

	var transferErr error

	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		var src io.Reader = conn
		if c.transferType == TransferTypeASCII {
			src = newASCIIConverter(conn, convertModeToLF)
		}

		_, transferErr = io.Copy(file, src)
	} else {
		var src io.Reader = file
		if c.transferType == TransferTypeASCII {
			src = newASCIIConverter(file, convertModeToCRLF)
		}

		_, transferErr = io.Copy(conn, src)
	}

	c.closeTransfer(transferErr)
}

func (c *session) handleRETR(arg string) {
	c.transferFile(arg, os.O_RDONLY, "download")
}

func (c *session) handleSTOR(arg string) {
	if !c.checkWritable() {
		return
	}

	flag := os.O_WRONLY | os.O_CREATE
	if c.restOffset == 0 {
		flag |= os.O_TRUNC
	}

	c.transferFile(arg, flag, "upload")
}

func (c *session) handleAPPE(arg string) {
	if !c.checkWritable() {
		return
	}

	c.transferFile(arg, os.O_WRONLY|os.O_CREATE|os.O_APPEND, "append")
}

func (c *session) handleDELE(arg string) {
	if !c.checkWritable() {
		return
	}

	p := c.absPath(arg)

	if err := c.driver.Remove(toBackendPath(p)); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not delete %s: %s", p, fileErrorMessage(err)))
		return
	}

	c.writeMessage(StatusFileOK, fmt.Sprintf("Removed file %s", p))
}

func (c *session) handleRNFR(arg string) {
	if !c.checkWritable() {
		return
	}

	p := c.absPath(arg)

	if _, err := c.driver.Stat(toBackendPath(p)); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not find %s: %s", p, fileErrorMessage(err)))
		return
	}

	c.renameFrom = p
	c.writeMessage(StatusFileActionPending, "Sure, give me a target")
}

func (c *session) handleRNTO(arg string) {
	if !c.checkWritable() {
		return
	}

	if c.renameFrom == "" {
		c.writeMessage(StatusBadCommandSequence, "RNFR required first")
		return
	}

	from := c.renameFrom
	c.renameFrom = ""
	to := c.absPath(arg)

	if err := c.driver.Rename(toBackendPath(from), toBackendPath(to)); err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not rename %s to %s: %s", from, to, fileErrorMessage(err)))
		return
	}

	c.writeMessage(StatusFileOK, fmt.Sprintf("Renamed %s to %s", from, to))
}

func (c *session) handleSIZE(arg string) {
	p := c.absPath(arg)

	info, err := c.driver.Stat(toBackendPath(p))
	if err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not stat %s: %s", p, fileErrorMessage(err)))
		return
	}

	if info.IsDir() {
		c.writeMessage(StatusActionNotTaken, "SIZE not allowed on a directory")
		return
	}

	c.writeMessage(StatusFileStatus, strconv.FormatInt(info.Size(), 10))
}

func (c *session) handleMDTM(arg string) {
	p := c.absPath(arg)

	info, err := c.driver.Stat(toBackendPath(p))
	if err != nil {
		c.writeMessage(replyCodeFor(err), fmt.Sprintf("Could not stat %s: %s", p, fileErrorMessage(err)))
		return
	}

	c.writeMessage(StatusFileStatus, info.ModTime().UTC().Format("20060102150405"))
}

func (c *session) handleREST(arg string) {
	offset, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || offset < 0 {
		c.writeMessage(StatusSyntaxErrorParameters, "REST requires a non-negative byte offset")
		return
	}

	c.restOffset = offset
	c.writeMessage(StatusFileActionPending, fmt.Sprintf("Resuming at %d", offset))
}

