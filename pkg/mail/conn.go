// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"bytes"
	"net"
	"sync/atomic"
	"time"
)

var startTLSCommand = []byte("STARTTLS")

// timeoutConn bounds every read and write by timeout. The SMTP client sets
// and clears its own deadlines around each command using its built-in
// defaults, so those calls are ignored here.
type timeoutConn struct {
	net.Conn
	timeout time.Duration
	tlsSent atomic.Bool
}

func newTimeoutConn(conn net.Conn, timeout time.Duration) *timeoutConn {
	return &timeoutConn{Conn: conn, timeout: timeout}
}

func (c *timeoutConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *timeoutConn) Write(b []byte) (int, error) {
	if bytes.HasPrefix(b, startTLSCommand) {
		c.tlsSent.Store(true)
	}
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

func (c *timeoutConn) SetDeadline(time.Time) error      { return nil }
func (c *timeoutConn) SetReadDeadline(time.Time) error  { return nil }
func (c *timeoutConn) SetWriteDeadline(time.Time) error { return nil }

// startTLSSent reports whether the STARTTLS command went out on this
// connection.
func (c *timeoutConn) startTLSSent() bool {
	return c.tlsSent.Load()
}
