package ocd

import (
	"regexp"
	"strconv"
	"strings"
)

// CommandResult is the decoded outcome of one executed Tcl command.
type CommandResult struct {
	// Cmd is the command as given by the caller.
	Cmd string
	// FullCmd is the command as transmitted, including the catch wrapping.
	FullCmd string
	// Retcode is the numeric completion code captured by the wrapping.
	// Zero means the command completed normally; the decoder attaches no
	// further meaning to non-zero values.
	Retcode int
	// Out is the command's textual output. May be empty and may contain
	// embedded newlines.
	Out string
}

// wrapCmd embeds cmd in the Tcl catch idiom that OpenOCD's interpreter
// evaluates to "<retcode> <output>". The wrapping text must match what the
// interpreter accepts byte for byte; altering it makes every command appear
// to fail or hang.
func wrapCmd(cmd string, capture bool) string {
	inner := cmd
	if capture {
		inner = "capture { " + cmd + " }"
	}

	return "set CMD_RETCODE [ catch { " + inner + " } CMD_OUTPUT ] ; " +
		`return "$CMD_RETCODE $CMD_OUTPUT" ; `
}

// A decoded response starts with the return code: a decimal number, either
// alone or followed by a single space and the command output.
var retcodeRegexp = regexp.MustCompile(`^-?\d+($| )`)

// decodeCmdResult splits the raw wrapped response into its return code and
// output. It does not judge the return code; 0-vs-nonzero handling belongs
// to the caller.
func decodeCmdResult(cmd, fullCmd, raw string) (*CommandResult, error) {
	if !retcodeRegexp.MatchString(raw) {
		return nil, &InvalidResponseError{
			Msg:     "received unexpected response from OpenOCD, it looks like OpenOCD misbehaves",
			FullCmd: fullCmd,
			Out:     raw,
		}
	}

	parts := strings.SplitN(raw, " ", 2)
	retcode, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, &InvalidResponseError{
			Msg:     "could not parse the return code of the response",
			FullCmd: fullCmd,
			Out:     raw,
		}
	}

	out := ""
	if len(parts) == 2 {
		out = parts[1]
	}

	return &CommandResult{Cmd: cmd, FullCmd: fullCmd, Retcode: retcode, Out: out}, nil
}
