package ftpd

import (
	"fmt"
	"strings"
	"time"
)

func (c *session) handleSYST(arg string) {
	c.writeMessage(StatusSystemType, "UNIX Type: L8")
}

func (c *session) handleNOOP(arg string) {
	c.writeMessage(StatusOK, "OK")
}

func (c *session) handleFEAT(arg string) {
	defer c.multilineAnswer(StatusSystemStatus, "Extensions supported")()

	for _, feature := range []string{"SIZE", "MDTM", "REST STREAM", "EPSV", "EPRT", "UTF8"} {
		c.writeLine(feature)
	}
}

func (c *session) handleOPTS(arg string) {
	parts := strings.SplitN(arg, " ", 2)

	if strings.EqualFold(parts[0], "UTF8") {
		c.writeMessage(StatusOK, "UTF8 is always on")
		return
	}

	c.writeMessage(StatusSyntaxErrorNotRecognised, "Don't know this option")
}

func (c *session) handleQUIT(arg string) {
	c.writeMessage(StatusClosingControlConn, "Goodbye")
	c.authState = stateClosed
}

func (c *session) handleABOR(arg string) {
	c.transferMu.Lock()
	transferInFlight := c.transferActive
	c.aborted = true
	c.closeTransferLocked()
	c.transferMu.Unlock()

	// If a transfer command is running in its own goroutine, it owns the
	// terminal reply: closing its connection here makes its io.Copy fail
	// and closeTransfer emit 426 then 226. Writing a reply here too would
	// desync the client's reply parsing with an extra line.
	if transferInFlight {
		return
	}

	c.writeMessage(StatusClosingDataConn, "ABOR command successful")
}

// handleSTAT reports connection status when called with no argument.
// STAT with a path argument would report a directory/file listing, but
// that case isn't supported by this driver surface.
func (c *session) handleSTAT(arg string) {
	if arg != "" {
		c.writeMessage(StatusCommandNotImplemented, "STAT on a path is not supported")
		return
	}

	defer c.multilineAnswer(StatusSystemStatus, "Server status")()

	duration := time.Now().UTC().Sub(c.connectedAt)
	duration -= duration % time.Second

	c.writeLine(fmt.Sprintf(
		"Connected to %s from %s for %s",
		c.server.settings.ListenAddr,
		c.conn.RemoteAddr(),
		duration,
	))

	if c.user != "" {
		c.writeLine(fmt.Sprintf("Logged in as %s", c.user))
	} else {
		c.writeLine("Not logged in yet")
	}

	c.writeLine(c.server.settings.Banner)
}

func (c *session) handleTYPE(arg string) {
	switch strings.ToUpper(arg) {
	case "A", "A N":
		c.transferType = TransferTypeASCII
		c.writeMessage(StatusOK, "Type set to ASCII")
	case "I", "I N", "L 8":
		c.transferType = TransferTypeImage
		c.writeMessage(StatusOK, "Type set to binary")
	default:
		c.writeMessage(StatusSyntaxErrorParameters, fmt.Sprintf("Unknown TYPE %q", arg))
	}
}

func (c *session) handleMODE(arg string) {
	if strings.EqualFold(arg, "S") {
		c.writeMessage(StatusOK, "Using Stream mode")
		return
	}

	c.writeMessage(StatusNotImplementedParam, "Only Stream mode is supported")
}

func (c *session) handleSTRU(arg string) {
	if strings.EqualFold(arg, "F") {
		c.writeMessage(StatusOK, "Using File structure")
		return
	}

	c.writeMessage(StatusNotImplementedParam, "Only File structure is supported")
}

func (c *session) handleALLO(arg string) {
	c.writeMessage(StatusOK, "OK, no allocation needed")
}
