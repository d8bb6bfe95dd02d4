package ocd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// errUnsupportedBpEntry marks breakpoint kinds (context, hybrid) whose
// listing entries carry fields this client does not model.
var errUnsupportedBpEntry = errors.New("unsupported breakpoint type")

// Breakpoint listing formats. OpenOCD changed the wording of the "bp"
// command output over time, so both the current and the legacy form of
// each entry are accepted.
var (
	// e.g. "Software breakpoint(IVA): addr=0x00001000, len=0x8, orig_instr=0xabcd1234"
	bpSwRegexp = regexp.MustCompile(
		`^Software breakpoint\(\w+\):\s*addr=(0x[0-9a-fA-F]+),\s*len=(0x[0-9a-fA-F]+),\s*orig_instr=(0x[0-9a-fA-F]+)$`)

	// e.g. "Hardware breakpoint(IVA): addr=0x00001010, len=0x4, num=0"
	bpHwRegexp = regexp.MustCompile(
		`^Hardware breakpoint\(\w+\):\s*addr=(0x[0-9a-fA-F]+),\s*len=(0x[0-9a-fA-F]+),\s*num=\d+$`)

	// e.g. "Breakpoint(IVA): 0x00001010, 0x4, 0" (legacy)
	bpHwLegacyRegexp = regexp.MustCompile(
		`^Breakpoint\(\w+\):\s*(0x[0-9a-fA-F]+),\s*(0x[0-9a-fA-F]+),\s*\d+$`)

	// e.g. "IVA breakpoint: 0x00001000, 0x8, 0xabcd1234" (legacy; the
	// leading word is the address space)
	bpSwLegacyRegexp = regexp.MustCompile(
		`^\w+ breakpoint:\s*(0x[0-9a-fA-F]+),\s*(0x[0-9a-fA-F]+),\s*(0x[0-9a-fA-F]+)$`)
)

// parseBpEntry parses one line of the "bp" command listing.
func parseBpEntry(line string) (BpInfo, error) {
	if strings.HasPrefix(line, "Context breakpoint") || strings.HasPrefix(line, "Hybrid breakpoint") {
		return BpInfo{}, errUnsupportedBpEntry
	}

	if match := bpSwRegexp.FindStringSubmatch(line); match != nil {
		return newSwBpInfo(match[1], match[2], match[3])
	}

	if match := bpHwRegexp.FindStringSubmatch(line); match != nil {
		return newHwBpInfo(match[1], match[2])
	}

	if match := bpHwLegacyRegexp.FindStringSubmatch(line); match != nil {
		return newHwBpInfo(match[1], match[2])
	}

	if match := bpSwLegacyRegexp.FindStringSubmatch(line); match != nil {
		return newSwBpInfo(match[1], match[2], match[3])
	}

	return BpInfo{}, fmt.Errorf("could not parse breakpoint entry %q", line)
}

func newSwBpInfo(addr, size, origInstr string) (BpInfo, error) {
	info := BpInfo{Type: BpTypeSW}

	var err error
	if info.Addr, err = parseHex(addr); err != nil {
		return BpInfo{}, err
	}
	if info.Size, err = parseHex(size); err != nil {
		return BpInfo{}, err
	}
	if info.OrigInstr, err = parseHex(origInstr); err != nil {
		return BpInfo{}, err
	}

	return info, nil
}

func newHwBpInfo(addr, size string) (BpInfo, error) {
	info := BpInfo{Type: BpTypeHW}

	var err error
	if info.Addr, err = parseHex(addr); err != nil {
		return BpInfo{}, err
	}
	if info.Size, err = parseHex(size); err != nil {
		return BpInfo{}, err
	}

	return info, nil
}
