package ftpd

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"
)

// transferHandler is the data-channel manager: a short-lived, single-use
// resource yielding exactly one bidirectional byte stream.
type transferHandler interface {
	// Open blocks until the data connection is established (passive:
	// accepting; active: dialing) or the connection timeout elapses.
	Open() (net.Conn, error)

	// Close releases any listener/socket owned by this endpoint.
	Close() error
}

// passiveTransferHandler implements PASV/EPSV: the server listens on an
// ephemeral (or range-restricted) port and waits for the client to connect.
type passiveTransferHandler struct {
	tcpListener *net.TCPListener
	port        int
	connection  net.Conn
	timeout     time.Duration
}

// errNoAvailableListeningPort is returned when no port within the
// configured passive port range could be bound.
var errNoAvailableListeningPort = errors.New("could not find any port to listen on")

func findListenerWithinPortRange(portRange *PortRange) (*net.TCPListener, error) {
	attempts := portRange.End - portRange.Start
	if attempts < 10 {
		attempts = 10
	} else if attempts > 1000 {
		attempts = 1000
	}

	for i := 0; i < attempts; i++ {
		port := portRange.Start + rand.Intn(portRange.End-portRange.Start+1) //nolint:gosec

		addr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("0.0.0.0:%d", port))
		if err != nil {
			return nil, newNetworkError("could not resolve passive port", err)
		}

		listener, err := net.ListenTCP("tcp", addr)
		if err == nil {
			return listener, nil
		}
	}

	return nil, errNoAvailableListeningPort
}

// currentPublicIP returns the four IPv4 octets to advertise for PASV,
// preferring the configured PublicHost and falling back to the address the
// client used to reach the control connection.
func (c *session) currentPublicIP() ([]string, error) {
	ip := c.server.settings.PublicHost
	if ip == "" {
		ip = strings.Split(c.conn.LocalAddr().String(), ":")[0]
	}

	return strings.Split(ip, "."), nil
}

func (c *session) handlePASV(arg string) {
	c.enterPassiveMode(false)
}

func (c *session) handleEPSV(arg string) {
	c.enterPassiveMode(true)
}

func (c *session) enterPassiveMode(extended bool) {
	var listener *net.TCPListener
	var err error

	if portRange := c.server.settings.PassiveTransferPortRange; portRange != nil {
		listener, err = findListenerWithinPortRange(portRange)
	} else {
		listener, err = net.ListenTCP("tcp", &net.TCPAddr{})
	}

	if err != nil {
		c.writeMessage(StatusServiceNotAvailable, fmt.Sprintf("Could not listen for passive connection: %v", err))
		return
	}

	handler := &passiveTransferHandler{
		tcpListener: listener,
		port:        listener.Addr().(*net.TCPAddr).Port,
		timeout:     c.server.connectionTimeout(),
	}

	c.setTransfer(handler)

	if !extended {
		p1 := handler.port / 256
		p2 := handler.port % 256

		quads, quadErr := c.currentPublicIP()
		if quadErr != nil {
			c.writeMessage(StatusServiceNotAvailable, fmt.Sprintf("Could not determine public address: %v", quadErr))
			return
		}

		c.writeMessage(StatusEnteringPASV, fmt.Sprintf(
			"Entering Passive Mode (%s,%s,%s,%s,%d,%d)", quads[0], quads[1], quads[2], quads[3], p1, p2))

		return
	}

	c.writeMessage(StatusEnteringEPSV, fmt.Sprintf("Entering Extended Passive Mode (|||%d|)", handler.port))
}

func (p *passiveTransferHandler) Open() (net.Conn, error) {
	if p.connection != nil {
		return p.connection, nil
	}

	if err := p.tcpListener.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		return nil, newNetworkError("failed to set accept deadline", err)
	}

	conn, err := p.tcpListener.Accept()
	if err != nil {
		return nil, newNetworkError("passive accept failed", err)
	}

	p.connection = conn

	return conn, nil
}

func (p *passiveTransferHandler) Close() error {
	var err error

	if p.tcpListener != nil {
		err = p.tcpListener.Close()
	}

	if p.connection != nil {
		if closeErr := p.connection.Close(); err == nil {
			err = closeErr
		}
	}

	return err
}
