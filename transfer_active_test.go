package ftpd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoteAddrFormat(t *testing.T) {
	require.True(t, remoteAddrRegex.MatchString("1,2,3,4,5,6"))
	require.False(t, remoteAddrRegex.MatchString("1,2,3,4,5"))
}

func TestParseRemoteAddr(t *testing.T) {
	addr, err := parseRemoteAddr("192,168,150,80,14,178")
	require.NoError(t, err)
	require.Equal(t, "192.168.150.80:3762", addr.String())

	_, err = parseRemoteAddr("not-an-address")
	require.ErrorIs(t, err, errRemoteAddrFormat)
}

func TestParseExtendedRemoteAddr(t *testing.T) {
	addr, err := parseExtendedRemoteAddr("|1|132.235.1.2|6275|")
	require.NoError(t, err)
	require.Equal(t, "132.235.1.2:6275", addr.String())

	_, err = parseExtendedRemoteAddr("|1|132.235.1.2|")
	require.ErrorIs(t, err, errRemoteAddrFormat)
}
