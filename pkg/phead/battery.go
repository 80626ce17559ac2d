package phead

import (
	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// Battery commands.
const (
	CmdReadBattery byte = 0x01
)

var batteryCommands = []Command{
	{Code: CmdReadBattery, Name: "read_battery", Handler: handleReadBattery},
}

// handleReadBattery replies the 16-bit level, low byte first.
func handleReadBattery(c *Call, args []byte) Result {
	if c.State.power != PowerBattery {
		return fail(comm.ErrCodeNoBattery)
	}
	level := c.State.batLevel
	return reply(byte(level), byte(level>>8))
}
