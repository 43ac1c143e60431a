package ftpd

import (
	"errors"
	"fmt"
	"net"
	"time"

	log "github.com/fclairamb/go-log"
	lognoop "github.com/fclairamb/go-log/noop"
)

// ErrNotListening is returned by Stop and Serve when the server isn't
// listening: Listen was never called, or Stop already closed the listener.
var ErrNotListening = errors.New("we aren't listening")

// commandDescription declares how the dispatcher should treat one verb.
type commandDescription struct {
	open            bool                   // reachable before authentication
	transferRelated bool                    // may open a data connection; runs in its own goroutine so ABOR can reach it
	specialAction   bool                    // handled even while a transfer is in progress (ABOR, QUIT, STAT)
	fn              func(c *session, arg string)
}

// commandsMap is shared across all Server instances: FTP semantics don't
// vary between servers, only driver/settings do.
var commandsMap = map[string]*commandDescription{ //nolint:gochecknoglobals
	// Authentication
	"USER": {fn: (*session).handleUSER, open: true},
	"PASS": {fn: (*session).handlePASS, open: true},
	"ACCT": {fn: (*session).handleNotImplemented, open: true},

	// Misc
	"FEAT": {fn: (*session).handleFEAT, open: true},
	"SYST": {fn: (*session).handleSYST, open: true},
	"NOOP": {fn: (*session).handleNOOP, open: true},
	"OPTS": {fn: (*session).handleOPTS, open: true},
	"QUIT": {fn: (*session).handleQUIT, open: true, specialAction: true},
	"ABOR": {fn: (*session).handleABOR, specialAction: true},
	"STAT": {fn: (*session).handleSTAT, specialAction: true},
	"HELP": {fn: (*session).handleNotImplemented, open: true},

	// File access
	"SIZE": {fn: (*session).handleSIZE},
	"MDTM": {fn: (*session).handleMDTM},
	"RETR": {fn: (*session).handleRETR, transferRelated: true},
	"STOR": {fn: (*session).handleSTOR, transferRelated: true},
	"APPE": {fn: (*session).handleAPPE, transferRelated: true},
	"DELE": {fn: (*session).handleDELE},
	"RNFR": {fn: (*session).handleRNFR},
	"RNTO": {fn: (*session).handleRNTO},
	"ALLO": {fn: (*session).handleALLO},
	"REST": {fn: (*session).handleREST},

	// Directory handling
	"CWD":  {fn: (*session).handleCWD},
	"XCWD": {fn: (*session).handleCWD},
	"PWD":  {fn: (*session).handlePWD},
	"XPWD": {fn: (*session).handlePWD},
	"CDUP": {fn: (*session).handleCDUP},
	"NLST": {fn: (*session).handleNLST, transferRelated: true},
	"LIST": {fn: (*session).handleLIST, transferRelated: true},
	"MKD":  {fn: (*session).handleMKD},
	"XMKD": {fn: (*session).handleMKD},
	"RMD":  {fn: (*session).handleRMD},
	"XRMD": {fn: (*session).handleRMD},

	// Connection handling
	"TYPE": {fn: (*session).handleTYPE},
	"MODE": {fn: (*session).handleMODE},
	"STRU": {fn: (*session).handleSTRU},
	"PASV": {fn: (*session).handlePASV},
	"EPSV": {fn: (*session).handleEPSV},
	"PORT": {fn: (*session).handlePORT},
	"EPRT": {fn: (*session).handleEPRT},
}

// Server listens for FTP control connections and spawns one isolated
// session per accepted client.
type Server struct {
	Logger        log.Logger
	settings      *Settings
	listener      net.Listener
	driver        MainDriver
	clientCounter uint32
}

// NewServer creates a Server around the given driver. The driver's
// settings aren't read until Listen is called.
func NewServer(driver MainDriver) *Server {
	return &Server{
		driver: driver,
		Logger: lognoop.NewNoOpLogger(),
	}
}

func (s *Server) loadSettings() error {
	settings, err := s.driver.GetSettings()
	if err != nil || settings == nil {
		return newDriverError("couldn't load settings", err)
	}

	if settings.ListenAddr == "" {
		settings.ListenAddr = "0.0.0.0:2121"
	}

	if settings.IdleTimeout == 0 {
		settings.IdleTimeout = 900
	}

	if settings.ConnectionTimeout == 0 {
		settings.ConnectionTimeout = 30
	}

	if settings.Banner == "" {
		settings.Banner = "goftpd FTP server"
	}

	s.settings = settings

	return nil
}

func (s *Server) connectionTimeout() time.Duration {
	return time.Duration(s.settings.ConnectionTimeout) * time.Second
}

// Listen binds the control port. It is not a blocking call.
func (s *Server) Listen() error {
	if err := s.loadSettings(); err != nil {
		return fmt.Errorf("could not load settings: %w", err)
	}

	listener, err := net.Listen("tcp", s.settings.ListenAddr)
	if err != nil {
		return newNetworkError("cannot listen on control port", err)
	}

	s.listener = listener
	s.Logger.Info("Listening", "address", s.listener.Addr())

	return nil
}

// Serve accepts and processes incoming clients until the listener is
// closed.
func (s *Server) Serve() error {
	listener := s.listener
	if listener == nil {
		return ErrNotListening
	}

	var tempDelay time.Duration

	for {
		conn, err := listener.Accept()
		if err != nil {
			if stop, finalErr := s.handleAcceptError(err, &tempDelay); stop {
				return finalErr
			}

			continue
		}

		tempDelay = 0

		s.clientCounter++
		c := s.newSession(conn, s.clientCounter)

		go c.serve()
	}
}

// handleAcceptError decides whether an Accept error should stop the loop.
// A deliberately closed listener stops it cleanly (nil error); anything
// else is logged and, unless the error looks permanent, the loop
// continues with an increasing backoff.
func (s *Server) handleAcceptError(err error, tempDelay *time.Duration) (stop bool, finalErr error) {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err.Error() == "use of closed network connection" {
		s.listener = nil
		return true, nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Temporary() { //nolint:staticcheck
		if *tempDelay == 0 {
			*tempDelay = 5 * time.Millisecond
		} else {
			*tempDelay *= 2
		}

		if max := time.Second; *tempDelay > max {
			*tempDelay = max
		}

		s.Logger.Warn("accept error, retrying", "err", err, "retryDelay", *tempDelay)
		time.Sleep(*tempDelay)

		return false, nil
	}

	s.Logger.Error("listener accept error", "err", err)

	return true, newNetworkError("listener accept error", err)
}

// ListenAndServe chains Listen and Serve, mirroring net/http's convention.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.Logger.Info("Starting")

	return s.Serve()
}

// Addr reports the listening address, or "" if not listening.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return ""
}

// Stop closes the listener. It is idempotent: a second call, or a call
// before Listen, does nothing and returns ErrNotListening. Sessions that
// are already running are not closed; they end when their clients leave.
func (s *Server) Stop() error {
	if s.listener == nil {
		return ErrNotListening
	}

	listener := s.listener
	s.listener = nil

	if err := listener.Close(); err != nil {
		return newNetworkError("couldn't close listener", err)
	}

	return nil
}
