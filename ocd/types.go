package ocd

// BpType identifies the kind of a breakpoint reported by OpenOCD.
type BpType string

const (
	BpTypeSW      BpType = "sw"
	BpTypeHW      BpType = "hw"
	BpTypeContext BpType = "context"
	BpTypeHybrid  BpType = "hybrid"
)

// WpType identifies the access kind a watchpoint triggers on.
type WpType string

const (
	WpTypeRead   WpType = "r"
	WpTypeWrite  WpType = "w"
	WpTypeAccess WpType = "a"
)

// BpInfo describes a single breakpoint from the breakpoint listing.
type BpInfo struct {
	// Addr is the breakpoint address.
	Addr uint64
	// Size is the breakpoint length in bytes.
	Size uint64
	// Type is the breakpoint kind.
	Type BpType
	// OrigInstr is the original instruction word replaced by a software
	// breakpoint. Valid only when Type is BpTypeSW.
	OrigInstr uint64
}

// WpInfo describes a single watchpoint from the watchpoint listing.
type WpInfo struct {
	// Addr is the watchpoint address.
	Addr uint64
	// Size is the watched region length in bytes.
	Size uint64
	// Type is the access kind the watchpoint triggers on.
	Type WpType
	// Value and Mask form the data-value match condition.
	Value uint64
	Mask  uint64
}

// TargetState is the run state reported by the current target.
type TargetState string

const (
	StateRunning      TargetState = "running"
	StateHalted       TargetState = "halted"
	StateReset        TargetState = "reset"
	StateDebugRunning TargetState = "debug-running"
)

// parseTargetState maps a curstate token to a TargetState. Unknown tokens
// are rejected so that a misbehaving server never yields a plausible but
// wrong state.
func parseTargetState(token string) (TargetState, bool) {
	switch state := TargetState(token); state {
	case StateRunning, StateHalted, StateReset, StateDebugRunning:
		return state, true
	default:
		return "", false
	}
}
