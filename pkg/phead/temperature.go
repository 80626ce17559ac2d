package phead

import (
	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// Temperature commands, only available with the temperature capability.
const (
	CmdGetTemperature byte = 0x01
	CmdSetTemperature byte = 0x02
)

var temperatureCommands = []Command{
	{Code: CmdGetTemperature, Name: "get_temperature", Handler: handleGetTemperature},
	{Code: CmdSetTemperature, Name: "set_temperature", Handler: handleSetTemperature},
}

func handleGetTemperature(c *Call, args []byte) Result {
	return reply(c.State.temperature)
}

func handleSetTemperature(c *Call, args []byte) Result {
	if len(args) < 1 {
		return fail(comm.ErrCodeBadCommand)
	}
	if args[0] != 0 {
		c.State.temperature = args[0]
	}
	return ok()
}
