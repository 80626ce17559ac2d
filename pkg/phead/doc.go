// Package phead implements the print-head side of the protocol: the
// device state, the command dispatch table and handlers per command
// group, plus Host, the host side counterpart built on comm.Client.
//
// A Dispatcher is a comm.FrameHandler. Every complete frame is checked
// for its checksum first, then pings are answered, and everything else
// is routed by (group, code). Temperature and UV groups are only
// available when the unit has the hardware.
package phead
