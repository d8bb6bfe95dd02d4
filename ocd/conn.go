package ocd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/go-openocd/logger"
)

// terminator is the single byte that frames every request and response on
// the Tcl RPC connection.
const terminator byte = 0x1a

// recvBlockSize is the maximum number of bytes consumed per read.
const recvBlockSize = 2048

// Client is a client of one OpenOCD Tcl RPC connection. It owns the TCP
// socket exclusively and executes commands strictly one at a time.
//
// Client is not safe for concurrent use; see the package documentation.
type Client struct {
	cfg    *ConnectionConfig
	logger logger.Logger

	conn    net.Conn
	metrics ConnectionMetrics
}

// NewClient creates a disconnected client for the given configuration.
func NewClient(cfg *ConnectionConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	return &Client{cfg: cfg, logger: cfg.Logger()}, nil
}

// Dial creates a client for the given configuration and connects it.
func Dial(cfg *ConnectionConfig) (*Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err := c.Connect(); err != nil {
		return nil, err
	}

	return c, nil
}

// Connect establishes the TCP connection to OpenOCD. It fails with a
// ConnectionError if the service is unreachable or the client is already
// connected.
func (c *Client) Connect() error {
	if c.conn != nil {
		return &ConnectionError{Err: ErrAlreadyConnected}
	}

	addr := net.JoinHostPort(c.cfg.Host(), strconv.Itoa(c.cfg.Port()))
	conn, err := net.DialTimeout("tcp", addr, c.cfg.ConnectTimeout())
	if err != nil {
		return &ConnectionError{Msg: "could not connect to OpenOCD at " + addr, Err: err}
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return &ConnectionError{Msg: "could not set TCP_NODELAY for the socket", Err: err}
		}
	}

	c.conn = conn
	c.metrics.incConnectCount()
	c.logger.Debug("connected to OpenOCD", "addr", addr)

	return nil
}

// Disconnect closes the connection. It is idempotent: calling it while
// already disconnected is a no-op. Errors during socket teardown are
// ignored because there is nothing useful the caller could do with them.
func (c *Client) Disconnect() {
	if c.conn == nil {
		return
	}

	c.closeSocket(true)
	c.logger.Debug("disconnected from OpenOCD")
}

// Reconnect disconnects (if connected) and connects again.
func (c *Client) Reconnect() error {
	c.Disconnect()
	return c.Connect()
}

// IsConnected reports whether the client currently holds an open socket.
func (c *Client) IsConnected() bool {
	return c.conn != nil
}

// SetDefaultTimeout changes the default command timeout. It applies to
// every subsequent command that carries no per-call override.
func (c *Client) SetDefaultTimeout(timeout time.Duration) error {
	return c.cfg.setDefaultTimeout(timeout)
}

// Metrics returns the connection metrics. The returned counters can be
// wired to prometheus CounterFunc collectors.
func (c *Client) Metrics() *ConnectionMetrics {
	return &c.metrics
}

// RawCmd transmits cmd verbatim, framed by the terminator byte, and
// returns the response text that arrived before the response terminator.
// An empty response is valid. The round trip is bounded by the default
// timeout unless a WithTimeout option is supplied.
//
// Unlike Cmd, RawCmd performs no wrapping, so the response carries no
// success/failure signal.
func (c *Client) RawCmd(cmd string, opts ...CmdOption) (string, error) {
	o, err := c.newCmdOptions(opts)
	if err != nil {
		return "", err
	}

	return c.rawCmd(cmd, o.timeout)
}

// rawCmd performs one framed command exchange. A timeout or transport
// error closes the socket immediately: the response to the timed-out
// command may still arrive later, and leaving the socket open would let it
// be consumed as the next command's response. The caller must reconnect.
func (c *Client) rawCmd(cmd string, timeout time.Duration) (string, error) {
	if c.conn == nil {
		return "", &ConnectionError{Err: ErrNotConnected}
	}

	if strings.IndexByte(cmd, terminator) >= 0 {
		return "", ErrCmdContainsTerminator
	}

	if err := c.send(cmd); err != nil {
		c.closeSocket(false)
		return "", err
	}

	resp, err := c.recv(cmd, timeout)
	if err != nil {
		c.closeSocket(false)
		return "", err
	}

	return resp, nil
}

func (c *Client) send(cmd string) error {
	if err := c.checkNoPendingBytes(); err != nil {
		return err
	}

	data := make([]byte, 0, len(cmd)+1)
	data = append(data, cmd...)
	data = append(data, terminator)

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.SendTimeout()))
	if _, err := c.conn.Write(data); err != nil {
		return &ConnectionError{Msg: "failed to send command", Err: err}
	}
	c.metrics.incCmdSendCount()

	return nil
}

// checkNoPendingBytes rejects the exchange when unread bytes are already
// waiting on the socket before the command is even sent. Such bytes would
// otherwise be consumed as the front of the next response.
func (c *Client) checkNoPendingBytes() error {
	// A deadline that is already expired fails the read inside the runtime
	// before any bytes are looked at, so the poll needs a short future
	// deadline: buffered bytes are returned immediately, an idle socket
	// times out after a millisecond.
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Millisecond))

	var probe [1]byte
	n, err := c.conn.Read(probe[:])
	if n > 0 {
		return &ConnectionError{Msg: "received unexpected bytes from OpenOCD before the command was even sent"}
	}

	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return &ConnectionError{Err: ErrConnClosed}
		}
		return &ConnectionError{Msg: "failed to poll the socket", Err: err}
	}

	return nil
}

// recv accumulates response bytes until the terminator is observed. The
// whole round trip shares one absolute deadline applied directly on the
// socket; individual reads are not bounded separately.
func (c *Client) recv(fullCmd string, timeout time.Duration) (string, error) {
	start := time.Now()
	_ = c.conn.SetReadDeadline(start.Add(timeout))

	maxSize := c.cfg.MaxResponseSize()
	buf := make([]byte, 0, recvBlockSize)
	block := make([]byte, recvBlockSize)

	for {
		n, err := c.conn.Read(block)
		if n > 0 {
			buf = append(buf, block[:n]...)

			if len(buf) > maxSize {
				return "", &ConnectionError{
					Msg: fmt.Sprintf("received too big response (exceeding %d bytes)", maxSize),
				}
			}

			if idx := bytes.IndexByte(buf, terminator); idx >= 0 {
				// The terminator must be the last received byte; anything
				// after it belongs to no outstanding command.
				if idx != len(buf)-1 {
					return "", &ConnectionError{
						Msg: "received extra unexpected byte(s) after the command response terminator",
					}
				}

				c.metrics.incCmdRecvCount()

				return string(buf[:idx]), nil
			}
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.metrics.incCmdTimeoutCount()
				return "", &CommandTimeoutError{
					FullCmd: fullCmd,
					Timeout: timeout,
					Elapsed: time.Since(start),
				}
			}
			if errors.Is(err, io.EOF) {
				return "", &ConnectionError{Err: ErrConnClosed}
			}
			return "", &ConnectionError{Msg: "failed to receive response", Err: err}
		}
	}
}

// closeSocket tears the socket down and marks the client disconnected.
// When nicely is set the write side is shut down first so the peer sees a
// clean FIN instead of a reset.
func (c *Client) closeSocket(nicely bool) {
	if c.conn == nil {
		return
	}

	if nicely {
		if tcpConn, ok := c.conn.(*net.TCPConn); ok {
			_ = tcpConn.CloseWrite()
		}
	}

	_ = c.conn.Close()
	c.conn = nil
}
