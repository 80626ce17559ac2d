package comm

import "io"

// Start codes mark the role of a frame on the wire.
const (
	StartCommand byte = 0xBD
	StartReply   byte = 0xA0
	StartError   byte = 0xA1
)

const (
	// ReplyOKCode is the single payload byte of an OK reply.
	ReplyOKCode byte = 0x00
	// PingCode is the first payload byte of a keep-alive ping.
	PingCode byte = 0x00

	// RxBufferSize is the capacity of the receive buffer, which bounds
	// the size of a whole frame.
	RxBufferSize = 20
	// FrameOverhead is the number of non-payload bytes in a frame
	// (start code, length and checksum).
	FrameOverhead = 3
	// MaxPayload is the largest payload that fits the receive buffer.
	MaxPayload = RxBufferSize - FrameOverhead
	// MaxReplySize bounds a reply frame on the host side, where only the
	// length byte limits the payload.
	MaxReplySize = 0xFF + FrameOverhead
)

// Frame contains the information of a frame.
type Frame struct {
	Start byte
	Data  []byte
}

// Command creates a command frame.
func Command(payload ...byte) *Frame {
	return &Frame{Start: StartCommand, Data: payload}
}

// Ping creates a keep-alive ping frame.
func Ping() *Frame {
	return Command(PingCode)
}

// Reply creates a reply frame carrying data.
func Reply(data ...byte) *Frame {
	return &Frame{Start: StartReply, Data: data}
}

// ReplyOK creates the OK reply.
func ReplyOK() *Frame {
	return Reply(ReplyOKCode)
}

// Error creates an error frame. It always carries exactly one byte.
func Error(code ErrorCode) *Frame {
	return &Frame{Start: StartError, Data: []byte{byte(code)}}
}

// IsError determines if the frame is an error frame.
func (f *Frame) IsError() bool {
	return f.Start == StartError
}

// IsOK determines if the frame is the OK reply.
func (f *Frame) IsOK() bool {
	return f.Start == StartReply && len(f.Data) == 1 && f.Data[0] == ReplyOKCode
}

// ErrorCode gets the error code of an error frame.
func (f *Frame) ErrorCode() ErrorCode {
	if len(f.Data) == 0 {
		return ErrCodeOther
	}
	return ErrorCode(f.Data[0])
}

// Bytes returns encoded bytes for sending, checksum included.
func (f *Frame) Bytes() []byte {
	l := len(f.Data)
	b := make([]byte, l+FrameOverhead)
	b[0], b[1] = f.Start, byte(l)
	copy(b[2:], f.Data)
	b[l+2] = Checksum(b[:l+2])
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// DecodeFrame decodes a complete raw frame and verifies its checksum.
func DecodeFrame(b []byte) (*Frame, error) {
	if len(b) < FrameOverhead || len(b) != int(b[1])+FrameOverhead {
		return nil, ErrShortFrame
	}
	if !Verify(b) {
		return nil, ErrBadChecksum
	}
	data := make([]byte, len(b)-FrameOverhead)
	copy(data, b[2:])
	return &Frame{Start: b[0], Data: data}, nil
}
