// Package comm provides L0 protocol support for the print-head serial link.
package comm

// L0 protocol is communicated between the print-head firmware and the
// SmallDrop host over a single point-to-point channel (UART or a
// Bluetooth serial bridge). One command is outstanding at a time.
//
// Every frame is start-aligned:
//
//	command: 0xBD LEN PAYLOAD[LEN] CRC
//	reply:   0xA0 LEN PAYLOAD[LEN] CRC
//	error:   0xA1 0x01 CODE CRC
//
// CRC is a CRC-8 over every preceding byte of the frame. There are no
// escape sequences: the receiver resynchronizes by discarding bytes until
// a start code shows up, and drops frames that do not fit its buffer.
//
// Producer: host
// Consumer: print-head firmware
