package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the link is not ready for communication.
	ErrNotReady = errors.New("not ready")
	// ErrNoReply indicates no reply received from peer before the deadline.
	ErrNoReply = errors.New("no reply")
	// ErrBadChecksum indicates a received frame failed checksum verification.
	ErrBadChecksum = errors.New("bad checksum")
	// ErrShortFrame indicates the bytes do not form a complete frame.
	ErrShortFrame = errors.New("short frame")
	// ErrPayloadTooLarge indicates a command exceeds MaxPayload, the peer
	// would drop it silently.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ErrorCode is the code carried by an error frame.
type ErrorCode byte

// Error codes, values are fixed by the wire protocol.
const (
	ErrCodeInvalidCrc    ErrorCode = 0x00
	ErrCodeBadCommand    ErrorCode = 0x01
	ErrCodeBadComms      ErrorCode = 0x02
	ErrCodeBadUvMap      ErrorCode = 0x03
	ErrCodeNoBattery     ErrorCode = 0x04
	ErrCodeNoTemperature ErrorCode = 0x05
	ErrCodeNoUv          ErrorCode = 0x06
	ErrCodeInvalidVolume ErrorCode = 0x07
	ErrCodeOther         ErrorCode = 0xFF
)

var errorCodeNames = map[ErrorCode]string{
	ErrCodeInvalidCrc:    "InvalidCrc",
	ErrCodeBadCommand:    "BadCommand",
	ErrCodeBadComms:      "BadComms",
	ErrCodeBadUvMap:      "BadUvMap",
	ErrCodeNoBattery:     "NoBattery",
	ErrCodeNoTemperature: "NoTemperature",
	ErrCodeNoUv:          "NoUv",
	ErrCodeInvalidVolume: "InvalidVolume",
	ErrCodeOther:         "Other",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(0x%02x)", byte(c))
}

// CommandError wraps error codes from reply.
type CommandError struct {
	Code ErrorCode
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command error 0x%02x (%s)", byte(e.Code), e.Code)
}

// CodeOf extracts the wire error code from err. Errors which are not
// a CommandError map to ErrCodeOther.
func CodeOf(err error) ErrorCode {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ErrCodeOther
}
