package ocd

import (
	"fmt"
	"regexp"
)

// e.g. "address: 0x00002000, len: 0x00000004, r/w/a: a, value: 0x00000000, mask: 0xffffffffffffffff"
var wpEntryRegexp = regexp.MustCompile(
	`^address:\s*(0x[0-9a-fA-F]+),\s*len:\s*(0x[0-9a-fA-F]+),\s*r/w/a:\s*(\w+),` +
		`\s*value:\s*(0x[0-9a-fA-F]+),\s*mask:\s*(0x[0-9a-fA-F]+)$`)

// parseWpEntry parses one line of the "wp" command listing.
func parseWpEntry(line string) (WpInfo, error) {
	match := wpEntryRegexp.FindStringSubmatch(line)
	if match == nil {
		return WpInfo{}, fmt.Errorf("could not parse watchpoint entry %q", line)
	}

	wpType, err := parseWpType(match[3])
	if err != nil {
		return WpInfo{}, err
	}

	info := WpInfo{Type: wpType}
	if info.Addr, err = parseHex(match[1]); err != nil {
		return WpInfo{}, err
	}
	if info.Size, err = parseHex(match[2]); err != nil {
		return WpInfo{}, err
	}
	if info.Value, err = parseHex(match[4]); err != nil {
		return WpInfo{}, err
	}
	if info.Mask, err = parseHex(match[5]); err != nil {
		return WpInfo{}, err
	}

	return info, nil
}

// parseWpType maps the r/w/a column to a WpType. Older OpenOCD versions
// print the numeric watchpoint_rw enum value instead of a letter.
func parseWpType(token string) (WpType, error) {
	switch token {
	case "r", "0":
		return WpTypeRead, nil
	case "w", "1":
		return WpTypeWrite, nil
	case "a", "2":
		return WpTypeAccess, nil
	default:
		return "", fmt.Errorf("could not parse watchpoint type %q", token)
	}
}
