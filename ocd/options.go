package ocd

import "time"

// cmdOptions carries the per-call settings of one command execution.
type cmdOptions struct {
	timeout      time.Duration
	capture      bool
	allowFailure bool
	phys         bool
	force        bool
}

// CmdOption represents a per-call option for one command execution. Options
// never mutate the connection's defaults.
type CmdOption interface {
	applyCmd(*cmdOptions) error
}

type cmdOptFunc func(*cmdOptions) error

func (f cmdOptFunc) applyCmd(o *cmdOptions) error { return f(o) }

// newCmdOptions resolves the effective options of one command execution,
// starting from the connection's current default timeout.
func (c *Client) newCmdOptions(opts []CmdOption) (*cmdOptions, error) {
	o := &cmdOptions{timeout: c.cfg.DefaultTimeout()}

	for _, opt := range opts {
		if err := opt.applyCmd(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// WithTimeout overrides the default timeout for this command only.
func WithTimeout(timeout time.Duration) CmdOption {
	return cmdOptFunc(func(o *cmdOptions) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		o.timeout = timeout

		return nil
	})
}

// WithCapture additionally wraps the command in OpenOCD's "capture"
// construct so that text the command merely logs, rather than returns, is
// included in the output.
//
// Recognized by Cmd.
func WithCapture() CmdOption {
	return cmdOptFunc(func(o *cmdOptions) error {
		o.capture = true
		return nil
	})
}

// AllowFailure makes Cmd return a CommandResult with a non-zero return
// code instead of a CommandFailedError. Needed for commands like shutdown
// whose failure code is expected.
//
// Recognized by Cmd.
func AllowFailure() CmdOption {
	return cmdOptFunc(func(o *cmdOptions) error {
		o.allowFailure = true
		return nil
	})
}

// WithPhys addresses physical instead of virtual memory.
//
// Recognized by ReadMemory and WriteMemory.
func WithPhys() CmdOption {
	return cmdOptFunc(func(o *cmdOptions) error {
		o.phys = true
		return nil
	})
}

// WithForce bypasses the register cache and accesses the hardware
// directly.
//
// Recognized by GetReg and SetReg.
func WithForce() CmdOption {
	return cmdOptFunc(func(o *cmdOptions) error {
		o.force = true
		return nil
	})
}
