package ocd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseWpEntry(t *testing.T) {
	require := require.New(t)

	info, err := parseWpEntry("address: 0x00002000, len: 0x00000004, r/w/a: a, value: 0x00000000, mask: 0xffffffffffffffff")
	require.NoError(err)
	require.Equal(uint64(0x2000), info.Addr)
	require.Equal(uint64(4), info.Size)
	require.Equal(WpTypeAccess, info.Type)
	require.Equal(uint64(0), info.Value)
	require.Equal(uint64(0xffffffffffffffff), info.Mask)
}

func TestParseWpEntry_NumericType(t *testing.T) {
	require := require.New(t)

	// Older OpenOCD prints the numeric enum value in the r/w/a column.
	info, err := parseWpEntry("address: 0x00001234, len: 0x00000008, r/w/a: 0, value: 0x0000abcd, mask: 0x0000ffff")
	require.NoError(err)
	require.Equal(uint64(0x1234), info.Addr)
	require.Equal(uint64(8), info.Size)
	require.Equal(WpTypeRead, info.Type)
	require.Equal(uint64(0xabcd), info.Value)
	require.Equal(uint64(0xffff), info.Mask)
}

func TestParseWpEntry_AllTypes(t *testing.T) {
	require := require.New(t)

	types := map[string]WpType{
		"r": WpTypeRead, "0": WpTypeRead,
		"w": WpTypeWrite, "1": WpTypeWrite,
		"a": WpTypeAccess, "2": WpTypeAccess,
	}
	for token, want := range types {
		info, err := parseWpEntry(
			"address: 0x1000, len: 0x4, r/w/a: " + token + ", value: 0x0, mask: 0xffffffff")
		require.NoError(err, "type token %q", token)
		require.Equal(want, info.Type, "type token %q", token)
	}
}

func TestParseWpEntry_Malformed(t *testing.T) {
	require := require.New(t)

	for _, line := range []string{
		"",
		"malformed wp entry",
		"address: 0x1000, len: 0x4, r/w/a: x, value: 0x0, mask: 0xffffffff",
		"address: 0x1000, len: 0x4, r/w/a: a",
	} {
		_, err := parseWpEntry(line)
		require.Error(err, "entry %q must not parse", line)
	}
}
