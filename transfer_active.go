package ftpd

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// activeTransferHandler implements PORT/EPRT: the server dials the
// client-advertised endpoint when the next transfer begins.
type activeTransferHandler struct {
	raddr   *net.TCPAddr
	conn    net.Conn
	timeout time.Duration
}

var remoteAddrRegex = regexp.MustCompile(`^([0-9]{1,3},){5}[0-9]{1,3}$`)

// errRemoteAddrFormat is returned when a PORT argument doesn't match the
// "h1,h2,h3,h4,p1,p2" shape.
var errRemoteAddrFormat = errors.New("remote address has a bad format")

// parseRemoteAddr parses the PORT command argument, e.g.
// "192,168,150,80,14,178" -> 192.168.150.80:3762.
func parseRemoteAddr(arg string) (*net.TCPAddr, error) {
	if !remoteAddrRegex.MatchString(arg) {
		return nil, fmt.Errorf("could not parse %q: %w", arg, errRemoteAddrFormat)
	}

	parts := strings.Split(arg, ",")
	ip := strings.Join(parts[0:4], ".")

	p1, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, err
	}

	p2, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, err
	}

	port := p1<<8 + p2

	return net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", ip, port))
}

// parseExtendedRemoteAddr parses the EPRT argument, e.g. "|1|132.235.1.2|6275|".
func parseExtendedRemoteAddr(arg string) (*net.TCPAddr, error) {
	parts := strings.Split(arg, "|")
	if len(parts) != 5 {
		return nil, fmt.Errorf("could not parse %q: %w", arg, errRemoteAddrFormat)
	}

	return net.ResolveTCPAddr("tcp", net.JoinHostPort(parts[2], parts[3]))
}

func (c *session) handlePORT(arg string) {
	raddr, err := parseRemoteAddr(arg)
	if err != nil {
		c.writeMessage(StatusSyntaxErrorNotRecognised, fmt.Sprintf("Problem parsing PORT: %v", err))
		return
	}

	c.enterActiveMode(raddr)
}

func (c *session) handleEPRT(arg string) {
	raddr, err := parseExtendedRemoteAddr(arg)
	if err != nil {
		c.writeMessage(StatusSyntaxErrorNotRecognised, fmt.Sprintf("Problem parsing EPRT: %v", err))
		return
	}

	c.enterActiveMode(raddr)
}

func (c *session) enterActiveMode(raddr *net.TCPAddr) {
	c.setTransfer(&activeTransferHandler{
		raddr:   raddr,
		timeout: c.server.connectionTimeout(),
	})

	c.writeMessage(StatusOK, "PORT command successful")
}

func (a *activeTransferHandler) Open() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: a.timeout, Control: reuseAddrControl}

	conn, err := dialer.Dial("tcp", a.raddr.String())
	if err != nil {
		return nil, newNetworkError("could not establish active connection", err)
	}

	a.conn = conn

	return conn, nil
}

func (a *activeTransferHandler) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}

	return nil
}
