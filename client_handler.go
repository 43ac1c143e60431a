package ftpd

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	log "github.com/fclairamb/go-log"
)

// TransferType is the representation the client negotiates with TYPE.
type TransferType int

// Supported transfer types. Stream mode and File structure are the only
// MODE/STRU values accepted, and aren't modeled as a type of their own
// since there's nothing to vary.
const (
	TransferTypeASCII TransferType = iota
	TransferTypeImage
)

// authState is the session's place in the USER/PASS state machine.
type authState int

const (
	stateAwaitingUser authState = iota
	stateAwaitingPass
	stateAuthenticated
	stateClosed
)

// session is one per accepted control connection. It exclusively owns its
// control socket, its pending/active data-channel endpoint, and its
// rename/rest scratch state; the ClientDriver filesystem is shared across
// sessions.
// nolint: maligned
type session struct {
	id          uint32
	server      *Server
	driver      ClientDriver
	conn        net.Conn
	reader      *bufio.Reader
	writer      *bufio.Writer
	logger      log.Logger
	connectedAt time.Time

	authState authState
	user      string

	paramsMu     sync.RWMutex
	cwd          string
	transferType TransferType
	lastCommand  string

	restOffset int64
	renameFrom string

	transferMu     sync.Mutex
	transfer       transferHandler
	transferWg     sync.WaitGroup
	transferActive bool
	aborted        bool
}

const maxCommandLineLength = 8192

func (s *Server) newSession(conn net.Conn, id uint32) *session {
	return &session{
		server:       s,
		conn:         conn,
		id:           id,
		reader:       bufio.NewReaderSize(conn, maxCommandLineLength),
		writer:       bufio.NewWriter(conn),
		connectedAt:  time.Now().UTC(),
		cwd:          "/",
		transferType: s.settings.DefaultTransferType,
		logger:       s.Logger.With("clientId", id),
	}
}

// Path returns the session's current virtual working directory.
func (c *session) Path() string {
	c.paramsMu.RLock()
	defer c.paramsMu.RUnlock()

	return c.cwd
}

func (c *session) setPath(p string) {
	c.paramsMu.Lock()
	defer c.paramsMu.Unlock()

	c.cwd = p
}

// ID returns the client's sequential connection number.
func (c *session) ID() uint32 { return c.id }

// RemoteAddr returns the client's network address.
func (c *session) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// LocalAddr returns the server-side address of this connection.
func (c *session) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Close disconnects the client and releases any transfer in progress.
func (c *session) Close() error {
	c.transferMu.Lock()
	defer c.transferMu.Unlock()

	c.aborted = true
	c.closeTransferLocked()

	return c.conn.Close()
}

func (c *session) disconnect() {
	if err := c.conn.Close(); err != nil {
		c.logger.Warn("problem disconnecting client", "err", err)
	}
}

func (c *session) closeTransferLocked() {
	if c.transfer != nil {
		if err := c.transfer.Close(); err != nil {
			c.logger.Warn("problem closing transfer connection", "err", err)
		}

		c.transfer = nil
	}
}

func (c *session) setTransfer(t transferHandler) {
	c.transferMu.Lock()
	defer c.transferMu.Unlock()

	c.closeTransferLocked()
	c.transfer = t
}

// end releases all session-owned resources on disconnection.
func (c *session) end() {
	c.server.driver.ClientDisconnected(c)

	c.transferMu.Lock()
	defer c.transferMu.Unlock()

	c.closeTransferLocked()

	_ = c.conn.Close() // may already be closed by disconnect
}

// serve is the per-connection goroutine entry point.
func (c *session) serve() {
	defer c.end()

	msg, err := c.server.driver.ClientConnected(c)
	if err != nil {
		c.writeMessage(StatusServiceNotAvailable, msg)
		return
	}

	c.writeMessage(StatusServiceReady, msg)

	for c.authState != stateClosed {
		if c.server.settings.IdleTimeout > 0 {
			deadline := time.Now().Add(time.Duration(c.server.settings.IdleTimeout) * time.Second)
			if err := c.conn.SetDeadline(deadline); err != nil {
				c.logger.Error("failed to set idle deadline", "err", err)
			}
		}

		line, err := c.reader.ReadString('\n')
		if err != nil {
			c.handleReadError(err)
			return
		}

		c.handleLine(line)
	}
}

func (c *session) handleReadError(err error) {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		c.writeMessage(StatusServiceNotAvailable, fmt.Sprintf(
			"command timeout (%d seconds): closing control connection", c.server.settings.IdleTimeout))

		if err := c.writer.Flush(); err != nil {
			c.logger.Error("flush error", "err", err)
		}

		c.disconnect()

		return
	}

	// EOF and other I/O errors on the control channel terminate the
	// session silently.
	c.logger.Debug("client disconnected", "err", err)
}

// handleLine parses and dispatches one received command line, enforcing
// the RNFR/RNTO and REST/{STOR,RETR,APPE} pairing discipline: any
// intervening command other than the expected pair-member cancels the
// pending state.
func (c *session) handleLine(line string) {
	verb, arg := parseLine(line)
	verb = strings.ToUpper(verb)

	desc := commandsMap[verb]
	if desc == nil {
		c.setLastCommand(verb)
		c.writeMessage(StatusSyntaxErrorNotRecognised, fmt.Sprintf("Command not recognized: %q", verb))

		return
	}

	if c.authState != stateAuthenticated && !desc.open {
		c.writeMessage(StatusNotLoggedIn, "Please login with USER and PASS")
		return
	}

	if !desc.specialAction {
		c.transferWg.Wait()
	}

	c.setLastCommand(verb)
	c.cancelPendingStateUnless(verb)

	if desc.transferRelated {
		c.transferWg.Add(1)

		c.transferMu.Lock()
		c.aborted = false
		c.transferActive = true
		c.transferMu.Unlock()

		go func() {
			defer func() {
				c.transferMu.Lock()
				c.transferActive = false
				c.transferMu.Unlock()

				c.transferWg.Done()
			}()
			c.runCommand(desc, verb, arg)
		}()

		return
	}

	c.runCommand(desc, verb, arg)
}

// cancelPendingStateUnless implements the two-step sequence discipline:
// RNFR/RNTO and REST/transfer pairs are cancelled by any other command.
func (c *session) cancelPendingStateUnless(verb string) {
	if verb != "RNTO" {
		c.renameFrom = ""
	}

	if verb != "REST" && verb != "STOR" && verb != "RETR" && verb != "APPE" {
		c.restOffset = 0
	}
}

func (c *session) runCommand(desc *commandDescription, verb, arg string) {
	defer func() {
		if r := recover(); r != nil {
			c.writeMessage(StatusActionAborted, fmt.Sprintf("internal error handling %s: %v", verb, r))
			c.logger.Warn("internal command handling error", "err", r, "command", verb)
		}
	}()

	desc.fn(c, arg)
}

func (c *session) setLastCommand(verb string) {
	c.paramsMu.Lock()
	defer c.paramsMu.Unlock()

	c.lastCommand = verb
}

// GetLastCommand returns the most recently dispatched verb.
func (c *session) GetLastCommand() string {
	c.paramsMu.RLock()
	defer c.paramsMu.RUnlock()

	return c.lastCommand
}

func (c *session) writeLine(line string) {
	if _, err := fmt.Fprintf(c.writer, "%s\r\n", line); err != nil {
		c.logger.Warn("answer couldn't be sent", "line", line, "err", err)
		return
	}

	if err := c.writer.Flush(); err != nil {
		c.logger.Warn("couldn't flush line", "err", err)
	}
}

// writeMessage emits a reply, splitting on embedded newlines using the
// "xyz-"/"xyz " multi-line convention.
func (c *session) writeMessage(code int, message string) {
	lines := strings.Split(message, "\n")

	for i, line := range lines {
		if i < len(lines)-1 {
			c.writeLine(fmt.Sprintf("%d-%s", code, line))
		} else {
			c.writeLine(fmt.Sprintf("%d %s", code, line))
		}
	}
}

// multilineAnswer writes the opening "code-message" line and returns a
// closer that writes the terminating "code End" line, for FEAT/STAT.
func (c *session) multilineAnswer(code int, message string) func() {
	c.writeLine(fmt.Sprintf("%d-%s", code, message))

	return func() {
		c.writeLine(fmt.Sprintf("%d End", code))
	}
}

// absPath resolves arg (relative or absolute) against the session's cwd
// into a normalized virtual path.
func (c *session) absPath(arg string) string {
	return resolvePath(c.Path(), arg)
}

// isAborted reports whether the in-flight transfer was cancelled by ABOR
// before it produced a reply, in which case handlers must stay silent.
func (c *session) isAborted() bool {
	c.transferMu.Lock()
	defer c.transferMu.Unlock()

	return c.aborted
}

// openTransfer waits for the negotiated data connection to be
// established, writing the 150 reply on success. If no endpoint was
// established it writes 425, unless ABOR already cancelled the transfer,
// in which case it writes nothing.
func (c *session) openTransfer(info string) (net.Conn, error) {
	c.transferMu.Lock()
	handler := c.transfer
	c.transferMu.Unlock()

	if handler == nil {
		if c.isAborted() {
			return nil, ErrNoTransferConnection
		}

		c.writeMessage(StatusCannotOpenDataConnection, ErrNoTransferConnection.Error())

		return nil, ErrNoTransferConnection
	}

	conn, err := handler.Open()
	if err != nil {
		c.writeMessage(StatusCannotOpenDataConnection, err.Error())
		return nil, err
	}

	c.writeMessage(StatusFileStatusOK, fmt.Sprintf("Opening %s mode data connection for %s", c.typeName(), info))

	return conn, nil
}

// closeTransfer tears down the data connection and emits the terminal
// reply: exactly one terminal reply per transfer, except that a transfer
// cancelled by ABOR gets 426 followed by 226.
func (c *session) closeTransfer(transferErr error) {
	c.transferMu.Lock()
	c.closeTransferLocked()
	aborted := c.aborted
	c.aborted = false
	c.transferMu.Unlock()

	if aborted {
		c.writeMessage(StatusConnectionClosed, "Connection closed; transfer aborted")
		c.writeMessage(StatusClosingDataConn, "Closing data connection")

		return
	}

	if transferErr != nil {
		c.writeMessage(StatusConnectionClosed, fmt.Sprintf("Connection closed; transfer aborted: %v", transferErr))
		return
	}

	c.writeMessage(StatusClosingDataConn, "Transfer complete")
}

func (c *session) typeName() string {
	if c.transferType == TransferTypeASCII {
		return "ASCII"
	}

	return "BINARY"
}
