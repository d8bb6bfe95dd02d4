package ocd

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"
)

// Cmd executes one Tcl command wrapped in the catch idiom and decodes the
// response into a CommandResult.
//
// A transport, framing or timeout error from the exchange propagates
// unchanged. A response that does not decode yields an
// InvalidResponseError. A decoded result with a non-zero return code
// yields a CommandFailedError wrapping the full result, unless the
// AllowFailure option is given.
func (c *Client) Cmd(cmd string, opts ...CmdOption) (*CommandResult, error) {
	o, err := c.newCmdOptions(opts)
	if err != nil {
		return nil, err
	}

	return c.cmd(cmd, o)
}

func (c *Client) cmd(cmd string, o *cmdOptions) (*CommandResult, error) {
	fullCmd := wrapCmd(cmd, o.capture)

	raw, err := c.rawCmd(fullCmd, o.timeout)
	if err != nil {
		return nil, err
	}

	result, err := decodeCmdResult(cmd, fullCmd, raw)
	if err != nil {
		return nil, err
	}

	if result.Retcode != 0 {
		c.metrics.incCmdFailedCount()
		c.logger.Debug("command failed", "cmd", cmd, "retcode", result.Retcode)

		if !o.allowFailure {
			return nil, &CommandFailedError{Result: result}
		}
	}

	return result, nil
}

// Halt halts the current target.
func (c *Client) Halt() error {
	_, err := c.Cmd("halt")
	return err
}

// Resume resumes the current target at its current program counter.
func (c *Client) Resume() error {
	_, err := c.Cmd("resume")
	return err
}

// ResumeAt resumes the current target at the given program counter.
func (c *Client) ResumeAt(newPC uint64) error {
	_, err := c.Cmd(fmt.Sprintf("resume %#x", newPC))
	return err
}

// Step single-steps the current target.
func (c *Client) Step() error {
	_, err := c.Cmd("step")
	return err
}

// StepAt single-steps the current target from the given program counter.
func (c *Client) StepAt(newPC uint64) error {
	_, err := c.Cmd(fmt.Sprintf("step %#x", newPC))
	return err
}

// ResetHalt resets the target and halts it immediately.
func (c *Client) ResetHalt() error {
	_, err := c.Cmd("reset halt")
	return err
}

// ResetInit resets the target, halts it and runs the reset-init script.
func (c *Client) ResetInit() error {
	_, err := c.Cmd("reset init")
	return err
}

// ResetRun resets the target and lets it run.
func (c *Client) ResetRun() error {
	_, err := c.Cmd("reset run")
	return err
}

// CurState queries the run state of the current target. An unrecognized
// state token is reported as an InvalidResponseError, never mapped to a
// default state.
func (c *Client) CurState() (TargetState, error) {
	result, err := c.Cmd("[target current] curstate")
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(result.Out)
	state, ok := parseTargetState(token)
	if !ok {
		return "", &InvalidResponseError{
			Msg:     fmt.Sprintf("obtained unrecognized target state %q", token),
			FullCmd: result.FullCmd,
			Out:     result.Out,
		}
	}

	return state, nil
}

// IsHalted reports whether the current target is halted.
func (c *Client) IsHalted() (bool, error) {
	state, err := c.CurState()
	if err != nil {
		return false, err
	}

	return state == StateHalted, nil
}

// IsRunning reports whether the current target is running.
func (c *Client) IsRunning() (bool, error) {
	state, err := c.CurState()
	if err != nil {
		return false, err
	}

	return state == StateRunning, nil
}

// GetReg reads the named register of the current target. The WithForce
// option bypasses the register cache.
func (c *Client) GetReg(name string, opts ...CmdOption) (uint64, error) {
	o, err := c.newCmdOptions(opts)
	if err != nil {
		return 0, err
	}

	forceArg := ""
	if o.force {
		forceArg = "-force "
	}
	cmd := fmt.Sprintf("dict get [ get_reg %s%s ] %s", forceArg, name, name)

	result, err := c.cmd(cmd, o)
	if err != nil {
		return 0, err
	}

	// Expecting a single hexadecimal number on the output.
	value, err := parseHex(strings.TrimSpace(result.Out))
	if err != nil {
		return 0, &InvalidResponseError{
			Msg:     "obtained invalid number from get_reg command",
			FullCmd: result.FullCmd,
			Out:     result.Out,
		}
	}

	return value, nil
}

// SetReg writes the named register of the current target. The WithForce
// option bypasses the register cache.
func (c *Client) SetReg(name string, value uint64, opts ...CmdOption) error {
	o, err := c.newCmdOptions(opts)
	if err != nil {
		return err
	}

	forceArg := ""
	if o.force {
		forceArg = "-force "
	}

	_, err = c.cmd(fmt.Sprintf("set_reg %s{ %s %#x }", forceArg, name, value), o)

	return err
}

func checkMemoryAccessParams(bitWidth int) error {
	switch bitWidth {
	case 8, 16, 32, 64:
		return nil
	default:
		return ErrInvalidBitWidth
	}
}

// ReadMemory reads count items of bitWidth bits (8, 16, 32 or 64) from the
// target memory at addr. The WithPhys option addresses physical memory.
func (c *Client) ReadMemory(addr uint64, bitWidth, count int, opts ...CmdOption) ([]uint64, error) {
	if err := checkMemoryAccessParams(bitWidth); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, ErrInvalidCount
	}

	o, err := c.newCmdOptions(opts)
	if err != nil {
		return nil, err
	}

	cmd := fmt.Sprintf("read_memory %#x %d %d", addr, bitWidth, count)
	if o.phys {
		cmd += " phys"
	}

	result, err := c.cmd(cmd, o)
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.TrimSpace(result.Out))
	if len(tokens) != count {
		return nil, &InvalidResponseError{
			Msg: fmt.Sprintf(
				"read_memory command provided different number of values than requested (expected %d but obtained %d)",
				count, len(tokens)),
			FullCmd: result.FullCmd,
			Out:     result.Out,
		}
	}

	values := make([]uint64, 0, count)
	for _, token := range tokens {
		if !hexRegexp.MatchString(token) {
			return nil, &InvalidResponseError{
				Msg:     "found an item that is not a valid hexadecimal number",
				FullCmd: result.FullCmd,
				Out:     result.Out,
			}
		}

		value, err := parseHex(token)
		if err != nil {
			return nil, &InvalidResponseError{
				Msg:     "found an item that is not a valid hexadecimal number",
				FullCmd: result.FullCmd,
				Out:     result.Out,
			}
		}
		values = append(values, value)
	}

	return values, nil
}

// WriteMemory writes the values as items of bitWidth bits (8, 16, 32 or
// 64) to the target memory at addr. Every value must fit the access width.
// The WithPhys option addresses physical memory.
func (c *Client) WriteMemory(addr uint64, bitWidth int, values []uint64, opts ...CmdOption) error {
	if err := checkMemoryAccessParams(bitWidth); err != nil {
		return err
	}
	if len(values) < 1 {
		return ErrNoWriteValues
	}
	for _, v := range values {
		if bits.Len64(v) > bitWidth {
			return ErrValueTooWide
		}
	}

	o, err := c.newCmdOptions(opts)
	if err != nil {
		return err
	}

	cmd := fmt.Sprintf("write_memory %#x %d %s", addr, bitWidth, makeTclList(values))
	if o.phys {
		cmd += " phys"
	}

	_, err = c.cmd(cmd, o)

	return err
}

// ListBp lists the breakpoints of the current target, in the order OpenOCD
// reports them.
func (c *Client) ListBp() ([]BpInfo, error) {
	result, err := c.Cmd("bp")
	if err != nil {
		return nil, err
	}

	lines := splitListingLines(result.Out)
	infos := make([]BpInfo, 0, len(lines))
	for _, line := range lines {
		info, err := parseBpEntry(line)
		if err != nil {
			return nil, &InvalidResponseError{
				Msg:     "could not parse the output of 'bp' command: " + err.Error(),
				FullCmd: result.FullCmd,
				Out:     result.Out,
			}
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// AddBp sets a breakpoint of the given length at addr. A hardware
// breakpoint is requested when hw is true.
func (c *Client) AddBp(addr uint64, size int, hw bool) error {
	cmd := fmt.Sprintf("bp %#x %d", addr, size)
	if hw {
		cmd += " hw"
	}

	_, err := c.Cmd(cmd)

	return err
}

// RemoveBp removes the breakpoint at addr.
func (c *Client) RemoveBp(addr uint64) error {
	_, err := c.Cmd(fmt.Sprintf("rbp %#x", addr))
	return err
}

// RemoveAllBp removes all breakpoints.
func (c *Client) RemoveAllBp() error {
	_, err := c.Cmd("rbp all")
	return err
}

// ListWp lists the watchpoints of the current target, in the order OpenOCD
// reports them.
func (c *Client) ListWp() ([]WpInfo, error) {
	result, err := c.Cmd("wp")
	if err != nil {
		return nil, err
	}

	lines := splitListingLines(result.Out)
	infos := make([]WpInfo, 0, len(lines))
	for _, line := range lines {
		info, err := parseWpEntry(line)
		if err != nil {
			return nil, &InvalidResponseError{
				Msg:     "could not parse the output of 'wp' command: " + err.Error(),
				FullCmd: result.FullCmd,
				Out:     result.Out,
			}
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// AddWp sets a watchpoint of the given length at addr, triggering on the
// given access kind.
func (c *Client) AddWp(addr uint64, size int, wpType WpType) error {
	_, err := c.Cmd(fmt.Sprintf("wp %#x %d %s", addr, size, wpType))
	return err
}

// RemoveWp removes the watchpoint at addr.
func (c *Client) RemoveWp(addr uint64) error {
	_, err := c.Cmd(fmt.Sprintf("rwp %#x", addr))
	return err
}

// RemoveAllWp removes all watchpoints.
func (c *Client) RemoveAllWp() error {
	_, err := c.Cmd("rwp all")
	return err
}

// Echo asks OpenOCD to echo msg back. Useful as a connection liveness
// probe.
func (c *Client) Echo(msg string) error {
	_, err := c.Cmd("echo {" + msg + "}")
	return err
}

// Version returns OpenOCD's version string.
func (c *Client) Version() (string, error) {
	result, err := c.Cmd("version")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result.Out), nil
}

var versionRegexp = regexp.MustCompile(`Open On-Chip Debugger (\d+)\.(\d+)\.(\d+)`)

// VersionTuple returns OpenOCD's version as (major, minor, patch).
func (c *Client) VersionTuple() (major, minor, patch int, err error) {
	result, err := c.Cmd("version")
	if err != nil {
		return 0, 0, 0, err
	}

	match := versionRegexp.FindStringSubmatch(strings.TrimSpace(result.Out))
	if match == nil {
		return 0, 0, 0, &InvalidResponseError{
			Msg:     "unable to parse the version string received from OpenOCD",
			FullCmd: result.FullCmd,
			Out:     result.Out,
		}
	}

	major, _ = strconv.Atoi(match[1])
	minor, _ = strconv.Atoi(match[2])
	patch, _ = strconv.Atoi(match[3])

	return major, minor, patch, nil
}

// TargetNames returns the names of all configured targets.
func (c *Client) TargetNames() ([]string, error) {
	result, err := c.Cmd("target names")
	if err != nil {
		return nil, err
	}

	return splitListingLines(result.Out), nil
}

// SelectTarget makes the named target the current one.
func (c *Client) SelectTarget(name string) error {
	_, err := c.Cmd("targets " + name)
	return err
}

// SetPoll enables or disables OpenOCD's background target polling.
func (c *Client) SetPoll(enable bool) error {
	arg := "off"
	if enable {
		arg = "on"
	}

	_, err := c.Cmd("poll " + arg)

	return err
}

// Exit disconnects from OpenOCD, leaving the server running.
func (c *Client) Exit() {
	c.Disconnect()
}

// Shutdown asks OpenOCD to terminate and disconnects. OpenOCD reports a
// non-zero return code for the shutdown command itself, so that failure is
// tolerated.
func (c *Client) Shutdown() error {
	if _, err := c.Cmd("shutdown", AllowFailure()); err != nil {
		return err
	}

	c.Disconnect()

	return nil
}

// A memory dump token is a hexadecimal number; depending on the OpenOCD
// version the 0x prefix may or may not be present.
var hexRegexp = regexp.MustCompile(`^(0x)?[0-9a-fA-F]+$`)

// parseHex parses a hexadecimal token with or without the 0x prefix.
func parseHex(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}

// makeTclList renders values as a Tcl list of hexadecimal numbers.
func makeTclList(values []uint64) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%#x", v)
	}
	b.WriteByte('}')

	return b.String()
}

// splitListingLines splits a tabular listing into trimmed, non-empty
// lines, preserving their order. Listings may carry irregular whitespace
// and trailing blank lines.
func splitListingLines(out string) []string {
	lines := strings.Split(out, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}

	return result
}
