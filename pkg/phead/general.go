package phead

import (
	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// General commands.
const (
	CmdInit        byte = 0x01
	CmdShutdown    byte = 0x02
	CmdDescription byte = 0x03
	CmdStateLED    byte = 0x04
)

var generalCommands = []Command{
	{Code: CmdInit, Name: "init", Handler: handleInit},
	{Code: CmdShutdown, Name: "shutdown", Handler: handleShutdown},
	{Code: CmdDescription, Name: "description", Handler: handleDescription},
	{Code: CmdStateLED, Name: "state_led", Handler: handleStateLED},
}

// handleInit takes [volume [speed_lo speed_hi [temperature]]].
// Absent arguments restore defaults, zero leaves the value unchanged.
// An invalid volume falls back to the default and is reported as a warning.
// Settings are committed before the actuator runs and are kept when it fails.
func handleInit(c *Call, args []byte) (res Result) {
	st := c.State
	switch {
	case len(args) < 1:
		st.volume = DefaultVolume
	case args[0] == 0:
	case IsValidVolume(args[0]):
		st.volume = args[0]
	default:
		st.volume = DefaultVolume
		res.Warnings = append(res.Warnings, comm.ErrCodeInvalidVolume)
	}

	if len(args) < 3 {
		st.speed = DefaultSpeed
	} else if speed := le16(args[1:]); speed != 0 {
		st.speed = speed
	}

	if st.caps.Temperature {
		if len(args) < 4 {
			st.temperature = DefaultTemperature
		} else if args[3] != 0 {
			st.temperature = args[3]
		}
	}

	if err := c.Actuator.Init(c.Ctx, st.snapshot()); err != nil {
		res.Err = err
	}
	return
}

func handleShutdown(c *Call, args []byte) Result {
	return actuated(c.Actuator.Shutdown(c.Ctx))
}

func handleDescription(c *Call, args []byte) Result {
	data := make([]byte, 0, 2+len(c.State.modelName))
	data = append(data, FWVersion, HWVersion)
	data = append(data, c.State.modelName...)
	return reply(data...)
}

func handleStateLED(c *Call, args []byte) Result {
	return actuated(c.Actuator.StateLED(c.Ctx, args))
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
