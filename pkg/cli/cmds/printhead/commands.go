package printhead

import (
	"context"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/smalldrop/phead.go/pkg/cli/sh"
	"github.com/smalldrop/phead.go/pkg/phead"
)

// simpleCmd creates a command without arguments which replies OK.
func simpleCmd(name, alias string, fn func(*phead.Host, context.Context) error) ishell.Cmd {
	cmd := ishell.Cmd{
		Name: name,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				return nil, fn(host, ctx)
			})
		}),
	}
	if alias != "" {
		cmd.Aliases = []string{alias}
	}
	return cmd
}

// byteCmd creates a command taking a single byte argument.
func byteCmd(name, help string, fn func(*phead.Host, context.Context, byte) error) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("%s required", help))
				return
			}
			args, err := sh.ParseBytes(c.Args[:1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				return nil, fn(host, ctx, args[0])
			})
		}),
	}
}

var (
	// PingCmd sends a keep-alive ping.
	PingCmd = simpleCmd("ping", "p", (*phead.Host).Ping)

	// InitCmd initializes the print head.
	InitCmd = ishell.Cmd{
		Name: "init",
		Help: "[VOLUME(mL) [SPEED [TEMPERATURE]]], 0 keeps current value",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var volume, temperature byte
			var speed uint16
			var err error
			if len(c.Args) > 0 {
				var vals []byte
				if vals, err = sh.ParseBytes(c.Args[:1]); err != nil {
					c.Err(err)
					return
				}
				volume = vals[0]
			}
			if len(c.Args) > 1 {
				if speed, err = sh.ParseUint16(c.Args[1]); err != nil {
					c.Err(err)
					return
				}
			}
			if len(c.Args) > 2 {
				var vals []byte
				if vals, err = sh.ParseBytes(c.Args[2:3]); err != nil {
					c.Err(err)
					return
				}
				temperature = vals[0]
			}
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				if len(c.Args) == 0 {
					return host.Do(ctx, phead.GroupGeneral, phead.CmdInit)
				}
				return host.Init(ctx, volume, speed, temperature)
			})
		}),
	}

	// ShutdownCmd shuts the print head down.
	ShutdownCmd = simpleCmd("shutdown", "", (*phead.Host).Shutdown)

	// DescribeCmd queries versions and model.
	DescribeCmd = ishell.Cmd{
		Name:    "describe",
		Aliases: []string{"desc"},
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				return host.Describe(ctx)
			})
		}),
	}

	// StateLEDCmd drives state LEDs.
	StateLEDCmd = ishell.Cmd{
		Name: "led",
		Help: "[ARGS...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args, err := sh.ParseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				return nil, host.StateLED(ctx, args...)
			})
		}),
	}

	// CalibrateCmd calibrates for a syringe volume.
	CalibrateCmd = byteCmd("calibrate", "VOLUME(mL)", (*phead.Host).Calibrate)

	// BatteryCmd reads the battery level.
	BatteryCmd = ishell.Cmd{
		Name:    "battery",
		Aliases: []string{"bat"},
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				level, err := host.ReadBattery(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]uint16{"level": level}, nil
			})
		}),
	}

	// StartPrintCmd starts printing.
	StartPrintCmd = simpleCmd("print.start", "start", (*phead.Host).StartPrint)

	// StopPrintCmd stops printing.
	StopPrintCmd = simpleCmd("print.stop", "stop", (*phead.Host).StopPrint)

	// SetSpeedCmd sets the print speed.
	SetSpeedCmd = ishell.Cmd{
		Name:    "print.speed",
		Aliases: []string{"speed"},
		Help:    "SPEED, 0 keeps current value",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("SPEED required"))
				return
			}
			speed, err := sh.ParseUint16(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				return nil, host.SetSpeed(ctx, speed)
			})
		}),
	}

	// RefillCmd refills the syringe.
	RefillCmd = simpleCmd("print.refill", "refill", (*phead.Host).Refill)

	// GetTemperatureCmd reads the temperature.
	GetTemperatureCmd = ishell.Cmd{
		Name:    "temp.get",
		Aliases: []string{"temp"},
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, func(ctx context.Context, host *phead.Host) (interface{}, error) {
				temp, err := host.GetTemperature(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]byte{"temperature": temp}, nil
			})
		}),
	}

	// SetTemperatureCmd sets the temperature.
	SetTemperatureCmd = byteCmd("temp.set", "TEMPERATURE", (*phead.Host).SetTemperature)

	// UVOnCmd turns UV lights on.
	UVOnCmd = simpleCmd("uv.on", "", func(host *phead.Host, ctx context.Context) error {
		return host.SetUV(ctx, true)
	})

	// UVOffCmd turns UV lights off.
	UVOffCmd = simpleCmd("uv.off", "", func(host *phead.Host, ctx context.Context) error {
		return host.SetUV(ctx, false)
	})

	// UVIntensityCmd sets UV intensity.
	UVIntensityCmd = byteCmd("uv.intensity", "INTENSITY", (*phead.Host).SetUVIntensity)

	// UVMapCmd selects UV lights.
	UVMapCmd = byteCmd("uv.map", "MAP", (*phead.Host).SetUVMap)
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&InitCmd,
		&ShutdownCmd,
		&DescribeCmd,
		&StateLEDCmd,
		&CalibrateCmd,
		&BatteryCmd,
		&StartPrintCmd,
		&StopPrintCmd,
		&SetSpeedCmd,
		&RefillCmd,
		&GetTemperatureCmd,
		&SetTemperatureCmd,
		&UVOnCmd,
		&UVOffCmd,
		&UVIntensityCmd,
		&UVMapCmd,
	)
}
