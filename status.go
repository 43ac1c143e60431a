package ftpd

// Three-digit reply codes, named after their RFC-959 (plus widely adopted
// extensions) meaning. Grouped by the first digit of the code.
const (
	StatusFileStatusOK          = 150 // "150 Opening ... data connection"
	StatusOK                    = 200 // generic success ack (NOOP, TYPE, PORT, ...)
	StatusCommandNotImplemented = 202
	StatusSystemStatus          = 211 // multiline FEAT / server STAT
	StatusDirectoryStatus       = 212
	StatusFileStatus            = 213 // SIZE / MDTM
	StatusSystemType            = 215 // SYST
	StatusServiceReady          = 220 // greeting
	StatusClosingControlConn    = 221 // QUIT
	StatusClosingDataConn       = 226 // transfer complete / ABOR ack
	StatusEnteringPASV          = 227
	StatusEnteringEPSV          = 229
	StatusUserLoggedIn          = 230 // PASS ok
	StatusFileOK                = 250 // CWD / CDUP / DELE / RMD / RNTO
	StatusPathCreated           = 257 // PWD / MKD

	StatusUserOK            = 331 // USER ok, need password
	StatusFileActionPending = 350 // RNFR / REST

	StatusServiceNotAvailable      = 421 // idle timeout / connection refused by the driver / passive listen failure; not sent on Stop
	StatusCannotOpenDataConnection = 425
	StatusConnectionClosed         = 426

	StatusSyntaxErrorNotRecognised = 500
	StatusSyntaxErrorParameters    = 501
	StatusNotImplemented           = 502
	StatusBadCommandSequence       = 503
	StatusNotImplementedParam      = 504
	StatusNotLoggedIn              = 530
	StatusActionNotTaken           = 550 // generic 550 failure (not found, permission, exists)
	StatusActionAborted            = 451
)
