package phead

import (
	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// Print commands.
const (
	CmdStartPrint byte = 0x01
	CmdStopPrint  byte = 0x02
	CmdSetSpeed   byte = 0x03
	CmdRefill     byte = 0x04
)

var printCommands = []Command{
	{Code: CmdStartPrint, Name: "start_print", Handler: handleStartPrint},
	{Code: CmdStopPrint, Name: "stop_print", Handler: handleStopPrint},
	{Code: CmdSetSpeed, Name: "set_speed", Handler: handleSetSpeed},
	{Code: CmdRefill, Name: "refill", Handler: handleRefill},
}

func handleStartPrint(c *Call, args []byte) Result {
	return actuated(c.Actuator.StartPrint(c.Ctx, c.State.speed))
}

func handleStopPrint(c *Call, args []byte) Result {
	return actuated(c.Actuator.StopPrint(c.Ctx))
}

// handleSetSpeed takes [speed_lo speed_hi]; zero leaves the speed unchanged.
func handleSetSpeed(c *Call, args []byte) Result {
	if len(args) < 2 {
		return fail(comm.ErrCodeBadCommand)
	}
	if speed := le16(args); speed != 0 {
		c.State.speed = speed
	}
	return ok()
}

func handleRefill(c *Call, args []byte) Result {
	return actuated(c.Actuator.Refill(c.Ctx))
}
