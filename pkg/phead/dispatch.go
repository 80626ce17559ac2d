package phead

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/smalldrop/phead.go/pkg/l0/comm"
)

// Group selects the subsystem handling a command.
type Group byte

// Command groups.
const (
	GroupGeneral     Group = 0x01
	GroupCalibration Group = 0x02
	GroupBattery     Group = 0x03
	GroupPrint       Group = 0x04
	GroupTemperature Group = 0x05
	GroupUV          Group = 0x06
)

// String implements fmt.Stringer.
func (g Group) String() string {
	if spec := groups[g]; spec != nil {
		return spec.name
	}
	return fmt.Sprintf("group(0x%02x)", byte(g))
}

// Result is the single outcome of a command.
type Result struct {
	// Data is the reply payload, nil for a plain OK.
	Data []byte
	// Err fails the command. A *comm.CommandError carries its code,
	// anything else is reported as comm.ErrCodeOther.
	Err error
	// Warnings are reported as error frames ahead of the reply.
	Warnings []comm.ErrorCode
}

func ok() Result {
	return Result{}
}

func reply(data ...byte) Result {
	return Result{Data: data}
}

func fail(code comm.ErrorCode) Result {
	return Result{Err: &comm.CommandError{Code: code}}
}

func actuated(err error) Result {
	if err != nil {
		return Result{Err: err}
	}
	return ok()
}

// Frames encodes the result for the wire.
func (r Result) Frames() []*comm.Frame {
	frames := make([]*comm.Frame, 0, len(r.Warnings)+1)
	for _, code := range r.Warnings {
		frames = append(frames, comm.Error(code))
	}
	switch {
	case r.Err != nil:
		frames = append(frames, comm.Error(comm.CodeOf(r.Err)))
	case r.Data != nil:
		frames = append(frames, comm.Reply(r.Data...))
	default:
		frames = append(frames, comm.ReplyOK())
	}
	return frames
}

// Call is the context a handler runs in.
type Call struct {
	Ctx      context.Context
	State    *State
	Actuator Actuator
}

// HandlerFunc handles one command, args exclude group and code bytes.
type HandlerFunc func(c *Call, args []byte) Result

// Command describes one entry of the dispatch table.
type Command struct {
	Code    byte
	Name    string
	Handler HandlerFunc
}

type groupSpec struct {
	name     string
	requires func(Capabilities) bool
	missing  comm.ErrorCode
	commands map[byte]*Command
}

func newGroup(name string, cmds ...Command) *groupSpec {
	g := &groupSpec{name: name, commands: make(map[byte]*Command, len(cmds))}
	for i := range cmds {
		g.commands[cmds[i].Code] = &cmds[i]
	}
	return g
}

func (g *groupSpec) gatedBy(requires func(Capabilities) bool, missing comm.ErrorCode) *groupSpec {
	g.requires, g.missing = requires, missing
	return g
}

var groups = map[Group]*groupSpec{
	GroupGeneral:     newGroup("general", generalCommands...),
	GroupCalibration: newGroup("calibration", calibrationCommands...),
	GroupBattery:     newGroup("battery", batteryCommands...),
	GroupPrint:       newGroup("print", printCommands...),
	GroupTemperature: newGroup("temperature", temperatureCommands...).
		gatedBy(func(c Capabilities) bool { return c.Temperature }, comm.ErrCodeNoTemperature),
	GroupUV: newGroup("uv", uvCommands...).
		gatedBy(func(c Capabilities) bool { return c.UV }, comm.ErrCodeNoUv),
}

// Known determines if the group is in the dispatch table.
func (g Group) Known() bool {
	return groups[g] != nil
}

// IsKnown determines if (group, code) is an entry of the dispatch table,
// regardless of capabilities.
func IsKnown(group Group, code byte) bool {
	spec := groups[group]
	return spec != nil && spec.commands[code] != nil
}

// Lookup resolves (group, code) in the dispatch table. When the command
// can not run, the error code to report is returned instead.
func Lookup(caps Capabilities, group Group, code byte) (*Command, comm.ErrorCode, bool) {
	spec := groups[group]
	if spec == nil {
		return nil, comm.ErrCodeBadCommand, false
	}
	if spec.requires != nil && !spec.requires(caps) {
		return nil, spec.missing, false
	}
	cmd := spec.commands[code]
	if cmd == nil {
		return nil, comm.ErrCodeBadCommand, false
	}
	return cmd, 0, true
}

// PingObserver is told about every valid ping.
type PingObserver interface {
	PingReceived(context.Context)
}

// Observer receives dispatch outcomes for accounting.
type Observer interface {
	ChecksumFailed()
	PingHandled()
	CommandHandled(group Group, code byte, res Result)
}

// Dispatcher verifies, disambiguates and routes command frames.
type Dispatcher struct {
	State    *State
	Actuator Actuator
	Pings    PingObserver
	Observer Observer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(st *State, act Actuator) *Dispatcher {
	if act == nil {
		act = LogActuator{}
	}
	return &Dispatcher{State: st, Actuator: act}
}

// HandleFrame implements comm.FrameHandler.
func (d *Dispatcher) HandleFrame(ctx context.Context, frame []byte) []*comm.Frame {
	if !comm.Verify(frame) {
		glog.V(1).Infof("checksum mismatch % x", frame)
		if d.Observer != nil {
			d.Observer.ChecksumFailed()
		}
		return []*comm.Frame{comm.Error(comm.ErrCodeInvalidCrc)}
	}
	payload := frame[2 : len(frame)-1]
	if len(payload) > 0 && payload[0] == comm.PingCode {
		if d.Pings != nil {
			d.Pings.PingReceived(ctx)
		}
		if d.Observer != nil {
			d.Observer.PingHandled()
		}
		return []*comm.Frame{comm.ReplyOK()}
	}
	var group Group
	var cmd []byte
	if len(payload) > 0 {
		group, cmd = Group(payload[0]), payload[1:]
	}
	return d.Execute(ctx, group, cmd).Frames()
}

// Execute runs the command addressed by group with cmd being the command
// code followed by its arguments.
func (d *Dispatcher) Execute(ctx context.Context, group Group, cmd []byte) (res Result) {
	var code byte
	if len(cmd) > 0 {
		code = cmd[0]
	}
	defer func() {
		if glog.V(2) {
			glog.Infof("%s/0x%02x % x: data=% x err=%v warnings=%v", group, code, cmd, res.Data, res.Err, res.Warnings)
		}
		if d.Observer != nil {
			d.Observer.CommandHandled(group, code, res)
		}
	}()

	d.State.lock.Lock()
	defer d.State.lock.Unlock()
	command, errCode, found := Lookup(d.State.caps, group, code)
	if !found {
		return fail(errCode)
	}
	if len(cmd) == 0 {
		return fail(comm.ErrCodeBadCommand)
	}
	res = command.Handler(&Call{Ctx: ctx, State: d.State, Actuator: d.Actuator}, cmd[1:])
	if res.Err != nil {
		if _, isCmdErr := res.Err.(*comm.CommandError); !isCmdErr {
			glog.Errorf("%s %s: %v", group, command.Name, res.Err)
		}
	}
	return res
}
