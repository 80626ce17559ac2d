package phead

import (
	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// UV commands, only available with the UV capability.
const (
	CmdTurnOnUV       byte = 0x01
	CmdTurnOffUV      byte = 0x02
	CmdSetUVIntensity byte = 0x03
	CmdSetUVMap       byte = 0x04
)

var uvCommands = []Command{
	{Code: CmdTurnOnUV, Name: "turn_on_uv", Handler: handleTurnOnUV},
	{Code: CmdTurnOffUV, Name: "turn_off_uv", Handler: handleTurnOffUV},
	{Code: CmdSetUVIntensity, Name: "set_uv_intensity", Handler: handleSetUVIntensity},
	{Code: CmdSetUVMap, Name: "set_uv_map", Handler: handleSetUVMap},
}

func handleTurnOnUV(c *Call, args []byte) Result {
	return actuated(c.Actuator.SetUV(c.Ctx, true, c.State.uvIntensity, c.State.uvMap))
}

func handleTurnOffUV(c *Call, args []byte) Result {
	return actuated(c.Actuator.SetUV(c.Ctx, false, c.State.uvIntensity, c.State.uvMap))
}

// handleSetUVIntensity applies the byte as is, zero is a legal intensity.
func handleSetUVIntensity(c *Call, args []byte) Result {
	if len(args) < 1 {
		return fail(comm.ErrCodeBadCommand)
	}
	c.State.uvIntensity = args[0]
	return ok()
}

// handleSetUVMap takes a bitmask of lights; zero leaves the map unchanged.
func handleSetUVMap(c *Call, args []byte) Result {
	if len(args) < 1 {
		return fail(comm.ErrCodeBadCommand)
	}
	if args[0] != 0 {
		c.State.uvMap = args[0]
	}
	return ok()
}
