package phead

import (
	"context"

	"github.com/golang/glog"
)

// Actuator drives the print-head hardware. Calls block command handling
// until they return.
type Actuator interface {
	Init(ctx context.Context, st Snapshot) error
	Shutdown(ctx context.Context) error
	StateLED(ctx context.Context, args []byte) error
	Calibrate(ctx context.Context, volume byte) error
	StartPrint(ctx context.Context, speed uint16) error
	StopPrint(ctx context.Context) error
	Refill(ctx context.Context) error
	SetUV(ctx context.Context, on bool, intensity, uvMap byte) error
}

// LogActuator only logs, for units without motor/UV drivers and for
// emulation.
type LogActuator struct{}

// Init implements Actuator.
func (LogActuator) Init(ctx context.Context, st Snapshot) error {
	glog.Infof("init: volume=%dmL speed=%d temperature=%d", st.Volume, st.Speed, st.Temperature)
	return nil
}

// Shutdown implements Actuator.
func (LogActuator) Shutdown(ctx context.Context) error {
	glog.Info("shutdown")
	return nil
}

// StateLED implements Actuator.
func (LogActuator) StateLED(ctx context.Context, args []byte) error {
	glog.V(1).Infof("state led % x", args)
	return nil
}

// Calibrate implements Actuator.
func (LogActuator) Calibrate(ctx context.Context, volume byte) error {
	glog.Infof("calibrate: volume=%dmL", volume)
	return nil
}

// StartPrint implements Actuator.
func (LogActuator) StartPrint(ctx context.Context, speed uint16) error {
	glog.Infof("start print: speed=%d", speed)
	return nil
}

// StopPrint implements Actuator.
func (LogActuator) StopPrint(ctx context.Context) error {
	glog.Info("stop print")
	return nil
}

// Refill implements Actuator.
func (LogActuator) Refill(ctx context.Context) error {
	glog.Info("refill")
	return nil
}

// SetUV implements Actuator.
func (LogActuator) SetUV(ctx context.Context, on bool, intensity, uvMap byte) error {
	glog.Infof("uv: on=%v intensity=%d map=%08b", on, intensity, uvMap)
	return nil
}
