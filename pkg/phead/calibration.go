package phead

import (
	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// Calibration commands.
const (
	CmdCalibrate byte = 0x01
)

var calibrationCommands = []Command{
	{Code: CmdCalibrate, Name: "calibrate", Handler: handleCalibrate},
}

func handleCalibrate(c *Call, args []byte) Result {
	if len(args) < 1 {
		return fail(comm.ErrCodeBadCommand)
	}
	if !IsValidVolume(args[0]) {
		return fail(comm.ErrCodeInvalidVolume)
	}
	c.State.volume = args[0]
	return actuated(c.Actuator.Calibrate(c.Ctx, args[0]))
}
