package ftpd

import "fmt"

// handleUSER records the candidate username and asks for a password.
// Re-sending USER mid-session simply restarts the login handshake.
func (c *session) handleUSER(arg string) {
	c.user = arg
	c.authState = stateAwaitingPass
	c.writeMessage(StatusUserOK, "OK, password required")
}

// handlePASS completes authentication by handing the username/password
// to the driver. A failed attempt closes the control connection rather
// than allowing unlimited retries.
func (c *session) handlePASS(arg string) {
	if c.authState != stateAwaitingPass {
		c.writeMessage(StatusBadCommandSequence, "USER first")
		return
	}

	driver, err := c.server.driver.AuthUser(c, c.user, arg)
	if err != nil {
		c.writeMessage(StatusNotLoggedIn, fmt.Sprintf("Authentication failed: %v", err))
		c.authState = stateAwaitingUser
		c.disconnect()

		return
	}

	if driver == nil {
		c.writeMessage(StatusNotLoggedIn, "Authentication failed")
		c.authState = stateAwaitingUser
		c.disconnect()

		return
	}

	c.driver = driver
	c.authState = stateAuthenticated
	c.writeMessage(StatusUserLoggedIn, "Password ok, continue")
}

func (c *session) handleNotImplemented(arg string) {
	c.writeMessage(StatusNotImplemented, "Not implemented")
}
