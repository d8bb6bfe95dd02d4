package ocd

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfigNil indicates that a nil ConnectionConfig was provided.
	ErrConfigNil = errors.New("ocd: connection config is nil")

	// ErrAlreadyConnected indicates that Connect was called on a client
	// that is already connected.
	ErrAlreadyConnected = errors.New("ocd: already connected")

	// ErrNotConnected indicates that a command was issued while the client
	// is disconnected.
	ErrNotConnected = errors.New("ocd: not connected")

	// ErrConnClosed indicates that OpenOCD closed the connection.
	ErrConnClosed = errors.New("ocd: connection closed by OpenOCD")

	// ErrCmdContainsTerminator indicates that an outbound command contains
	// the frame terminator byte (0x1a) and therefore cannot be transmitted.
	ErrCmdContainsTerminator = errors.New("ocd: command contains the terminator byte 0x1a")
)

var (
	// ErrInvalidPort indicates a TCP port number outside the range 1-65535.
	ErrInvalidPort = errors.New("ocd: port is out of range [1, 65535]")

	// ErrInvalidTimeout indicates a timeout value that is not greater than zero.
	ErrInvalidTimeout = errors.New("ocd: timeout must be greater than zero")

	// ErrInvalidResponseSize indicates a maximum response size lower than one byte.
	ErrInvalidResponseSize = errors.New("ocd: max response size must be 1 or higher")

	// ErrInvalidBitWidth indicates an unsupported memory access width.
	// Supported widths are 8, 16, 32 and 64 bits.
	ErrInvalidBitWidth = errors.New("ocd: memory access width must be one of 8, 16, 32, 64")

	// ErrInvalidCount indicates a memory read count lower than one.
	ErrInvalidCount = errors.New("ocd: count must be 1 or higher")

	// ErrNoWriteValues indicates that a memory write was requested without values.
	ErrNoWriteValues = errors.New("ocd: at least one value to write must be provided")

	// ErrValueTooWide indicates a memory write value that does not fit the
	// requested access width.
	ErrValueTooWide = errors.New("ocd: found a value that exceeds the access width")
)

// Error is the common interface implemented by all typed errors returned by
// the client: [ConnectionError], [CommandTimeoutError],
// [InvalidResponseError] and [CommandFailedError]. It allows blanket
// handling with errors.As:
//
//	var ocdErr ocd.Error
//	if errors.As(err, &ocdErr) { ... }
type Error interface {
	error
	ocdError()
}

// ConnectionError reports a transport-level failure below the framing
// layer: connection refused, reset, unreachable host, or a protocol
// violation that invalidates the connection (unexpected bytes, oversized
// response). The client closes the socket before returning it; the caller
// must reconnect explicitly.
type ConnectionError struct {
	// Msg describes the failure.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ConnectionError) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	default:
		return e.Msg
	}
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (*ConnectionError) ocdError() {}

// CommandTimeoutError reports that the complete response to a command did
// not arrive within the effective timeout. The socket has been closed to
// prevent the late response from corrupting the next command's framing.
type CommandTimeoutError struct {
	// FullCmd is the command text as transmitted, including any wrapping.
	FullCmd string
	// Timeout is the effective timeout that was applied.
	Timeout time.Duration
	// Elapsed is the time spent waiting before giving up.
	Elapsed time.Duration
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("ocd: did not receive the complete command response within %v (waited %v)",
		e.Timeout, e.Elapsed.Round(time.Millisecond))
}

func (*CommandTimeoutError) ocdError() {}

// InvalidResponseError reports a response that was received but could not
// be understood: it does not conform to the wrapped response shape, or a
// convenience parser could not interpret otherwise well-formed output.
type InvalidResponseError struct {
	// Msg describes what could not be parsed.
	Msg string
	// FullCmd is the command text as transmitted, including any wrapping.
	FullCmd string
	// Out is the raw response text, kept for diagnosis.
	Out string
}

func (e *InvalidResponseError) Error() string {
	return "ocd: " + e.Msg
}

func (*InvalidResponseError) ocdError() {}

// CommandFailedError reports a well-formed response whose return code
// signals that the command itself failed inside OpenOCD. The full result,
// including the server's diagnostic output, is preserved.
type CommandFailedError struct {
	Result *CommandResult
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("ocd: command failed: %q (error code: %d)", e.Result.Cmd, e.Result.Retcode)
}

func (*CommandFailedError) ocdError() {}
