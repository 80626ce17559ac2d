package sh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	out, err := ParseBytes([]string{"1", "0x10", "255", "0"})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0x10, 0xff, 0}, out)

	for _, arg := range []string{"256", "-1", "x"} {
		_, err = ParseBytes([]string{arg})
		require.Error(t, err, arg)
	}
}

func TestParseUint16(t *testing.T) {
	val, err := ParseUint16("0x1234")
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), val)
	_, err = ParseUint16("65536")
	require.Error(t, err)
}
