package phead

import (
	"context"
	"fmt"

	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// Description is the reply of the description command.
type Description struct {
	FWVersion byte   `json:"fw_version"`
	HWVersion byte   `json:"hw_version"`
	ModelName string `json:"model_name"`
}

// Host issues print-head commands over a comm.Client.
type Host struct {
	Client *comm.Client
}

// NewHost wraps a client.
func NewHost(client *comm.Client) *Host {
	return &Host{Client: client}
}

// Do sends a command of group and returns the result.
func (h *Host) Do(ctx context.Context, group Group, code byte, args ...byte) (comm.Result, error) {
	return h.Client.Do(ctx, append([]byte{byte(group), code}, args...)...)
}

func (h *Host) doOK(ctx context.Context, group Group, code byte, args ...byte) error {
	_, err := h.Do(ctx, group, code, args...)
	return err
}

// Ping sends a keep-alive ping.
func (h *Host) Ping(ctx context.Context) error {
	return h.Client.Ping(ctx)
}

// Init initializes the print head. Zero values leave settings unchanged;
// a non-fatal invalid volume is returned as a warning. An Other error
// leaves the new settings applied on the device.
func (h *Host) Init(ctx context.Context, volume byte, speed uint16, temperature byte) ([]comm.ErrorCode, error) {
	res, err := h.Do(ctx, GroupGeneral, CmdInit, volume, byte(speed), byte(speed>>8), temperature)
	return res.Warnings, err
}

// Shutdown shuts the print head down.
func (h *Host) Shutdown(ctx context.Context) error {
	return h.doOK(ctx, GroupGeneral, CmdShutdown)
}

// Describe queries versions and model name.
func (h *Host) Describe(ctx context.Context) (*Description, error) {
	res, err := h.Do(ctx, GroupGeneral, CmdDescription)
	if err != nil {
		return nil, err
	}
	if len(res.Data) < 2 {
		return nil, fmt.Errorf("description reply too short: % x", res.Data)
	}
	return &Description{
		FWVersion: res.Data[0],
		HWVersion: res.Data[1],
		ModelName: string(res.Data[2:]),
	}, nil
}

// StateLED drives the state LEDs.
func (h *Host) StateLED(ctx context.Context, args ...byte) error {
	return h.doOK(ctx, GroupGeneral, CmdStateLED, args...)
}

// Calibrate runs calibration for a syringe volume.
func (h *Host) Calibrate(ctx context.Context, volume byte) error {
	return h.doOK(ctx, GroupCalibration, CmdCalibrate, volume)
}

// ReadBattery reads the battery level.
func (h *Host) ReadBattery(ctx context.Context) (uint16, error) {
	res, err := h.Do(ctx, GroupBattery, CmdReadBattery)
	if err != nil {
		return 0, err
	}
	if len(res.Data) < 2 {
		return 0, fmt.Errorf("battery reply too short: % x", res.Data)
	}
	return le16(res.Data), nil
}

// StartPrint starts extruding at the configured speed.
func (h *Host) StartPrint(ctx context.Context) error {
	return h.doOK(ctx, GroupPrint, CmdStartPrint)
}

// StopPrint stops extruding.
func (h *Host) StopPrint(ctx context.Context) error {
	return h.doOK(ctx, GroupPrint, CmdStopPrint)
}

// SetSpeed sets the print speed, zero leaves it unchanged.
func (h *Host) SetSpeed(ctx context.Context, speed uint16) error {
	return h.doOK(ctx, GroupPrint, CmdSetSpeed, byte(speed), byte(speed>>8))
}

// Refill refills the syringe.
func (h *Host) Refill(ctx context.Context) error {
	return h.doOK(ctx, GroupPrint, CmdRefill)
}

// GetTemperature reads the bioink temperature.
func (h *Host) GetTemperature(ctx context.Context) (byte, error) {
	res, err := h.Do(ctx, GroupTemperature, CmdGetTemperature)
	if err != nil {
		return 0, err
	}
	if len(res.Data) < 1 {
		return 0, fmt.Errorf("empty temperature reply")
	}
	return res.Data[0], nil
}

// SetTemperature sets the bioink temperature, zero leaves it unchanged.
func (h *Host) SetTemperature(ctx context.Context, temperature byte) error {
	return h.doOK(ctx, GroupTemperature, CmdSetTemperature, temperature)
}

// SetUV turns UV lights on or off.
func (h *Host) SetUV(ctx context.Context, on bool) error {
	if on {
		return h.doOK(ctx, GroupUV, CmdTurnOnUV)
	}
	return h.doOK(ctx, GroupUV, CmdTurnOffUV)
}

// SetUVIntensity sets UV intensity.
func (h *Host) SetUVIntensity(ctx context.Context, intensity byte) error {
	return h.doOK(ctx, GroupUV, CmdSetUVIntensity, intensity)
}

// SetUVMap selects UV lights by bitmask, zero leaves the map unchanged.
func (h *Host) SetUVMap(ctx context.Context, uvMap byte) error {
	return h.doOK(ctx, GroupUV, CmdSetUVMap, uvMap)
}
