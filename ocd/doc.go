// Package ocd implements a client for the Tcl RPC interface of OpenOCD
// (Open On-Chip Debugger).
//
// OpenOCD exposes a plain TCP endpoint (default 127.0.0.1:6666) that
// evaluates submitted Tcl text. Requests and responses are framed by a
// single terminator byte (0x1a) and the protocol is strictly
// one-command-at-a-time: there are no request identifiers and a second
// command must not be sent before the first response has been fully
// consumed.
//
// Because the server evaluates arbitrary Tcl but does not natively report
// a per-command success/failure signal, every command submitted through
// [Client.Cmd] is embedded in a Tcl catch idiom that yields both the
// command's textual output and a numeric return code. [Client.RawCmd]
// bypasses the wrapping and exchanges verbatim text.
//
// Connection establishment:
//   - Build a configuration with [NewConnectionConfig].
//   - Create a client with [NewClient] and call [Client.Connect], or use
//     [Dial] to do both. Pair Connect with a deferred [Client.Disconnect]
//     so the socket is released on every return path.
//
// Command execution:
//   - [Client.Cmd] runs one Tcl command and decodes its return code.
//   - Typed conveniences (register, memory, breakpoint, watchpoint and
//     execution-control operations) build on Cmd and parse its output.
//
// Every command is bounded by the connection's default timeout, or by a
// per-call [WithTimeout] override. After a command timeout the socket is
// closed immediately so that a late response can never be mistaken for
// the next command's reply; the caller must reconnect explicitly.
//
// A Client is not safe for concurrent use. Callers that share one client
// across goroutines must serialize entire commands with their own lock;
// the protocol offers no way to demultiplex interleaved responses.
package ocd
