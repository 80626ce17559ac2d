package comm

import "github.com/sigurn/crc8"

// CRC-8 with polynomial 0x07, no reflection, zero init and xorout.
var crcTable = crc8.MakeTable(crc8.CRC8)

// Checksum computes the frame checksum over data.
func Checksum(data []byte) byte {
	return crc8.Checksum(data, crcTable)
}

// Verify checks the trailing checksum byte of a raw frame against
// the bytes preceding it.
func Verify(frame []byte) bool {
	n := len(frame) - 1
	if n < 1 {
		return false
	}
	return Checksum(frame[:n]) == frame[n]
}
