package comm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	require.Equal(t, byte(0xF4), Checksum([]byte("123456789")))
	require.Equal(t, byte(0x00), Checksum(nil))
	require.NotEqual(t, Checksum([]byte{0x01, 0x02, 0x03}), Checksum([]byte{0x01, 0x02, 0x04}))
}

func TestVerifyDetectsSingleByteCorruption(t *testing.T) {
	frames := [][]byte{
		Ping().Bytes(),
		Command(0x01, 0x03).Bytes(),
		Command(0x01, 0x01, 0x0A, 0x05, 0x00, 0x28).Bytes(),
		Reply(0x10, 0x10, 'S', 'D').Bytes(),
		Error(ErrCodeInvalidVolume).Bytes(),
	}
	for _, frame := range frames {
		require.True(t, Verify(frame))
		for i := range frame {
			for _, flip := range []byte{0x01, 0x80, 0xFF} {
				corrupted := append([]byte(nil), frame...)
				corrupted[i] ^= flip
				require.Falsef(t, Verify(corrupted), "frame % x byte %d ^ %02x", frame, i, flip)
			}
		}
	}
	require.False(t, Verify(nil))
	require.False(t, Verify([]byte{0x00}))
}

func TestFrame(t *testing.T) {
	testCases := []struct {
		name   string
		frame  *Frame
		expect []byte
	}{
		{"ping", Ping(), []byte{StartCommand, 1, PingCode}},
		{"command", Command(0x01, 0x03), []byte{StartCommand, 2, 0x01, 0x03}},
		{"ok", ReplyOK(), []byte{StartReply, 1, ReplyOKCode}},
		{"reply", Reply(0x34, 0x12), []byte{StartReply, 2, 0x34, 0x12}},
		{"error", Error(ErrCodeNoBattery), []byte{StartError, 1, 0x04}},
		{"empty reply", Reply(), []byte{StartReply, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expect := append(tc.expect, Checksum(tc.expect))
			require.Equal(t, expect, tc.frame.Bytes())
			var buf bytes.Buffer
			n, err := tc.frame.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, expect, buf.Bytes())
			require.Equal(t, int64(len(expect)), n)
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	frame, err := DecodeFrame(Error(ErrCodeNoUv).Bytes())
	require.NoError(t, err)
	require.True(t, frame.IsError())
	require.Equal(t, ErrCodeNoUv, frame.ErrorCode())

	frame, err = DecodeFrame(ReplyOK().Bytes())
	require.NoError(t, err)
	require.True(t, frame.IsOK())

	raw := Reply(1, 2, 3).Bytes()
	_, err = DecodeFrame(raw[:len(raw)-1])
	require.Equal(t, ErrShortFrame, err)
	raw[2]++
	_, err = DecodeFrame(raw)
	require.Equal(t, ErrBadChecksum, err)
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, "InvalidVolume", ErrCodeInvalidVolume.String())
	require.Equal(t, "ErrorCode(0x42)", ErrorCode(0x42).String())
	err := error(&CommandError{Code: ErrCodeNoTemperature})
	require.Equal(t, "command error 0x05 (NoTemperature)", err.Error())
	require.Equal(t, ErrCodeNoTemperature, CodeOf(err))
	require.Equal(t, ErrCodeOther, CodeOf(ErrNoReply))
}
