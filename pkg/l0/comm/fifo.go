package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// FrameHandler is called when a complete command frame is received.
// The returned frames are written back in order.
type FrameHandler interface {
	HandleFrame(context.Context, []byte) []*Frame
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, []byte) []*Frame

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame []byte) []*Frame {
	return f(ctx, frame)
}

// LinkState indicates the state of the connection as observed by pings.
type LinkState int

const (
	// LinkDown means no ping has been seen yet.
	LinkDown LinkState = iota
	// LinkUp means pings arrive within the timeout.
	LinkUp
	// LinkLost means the ping timeout expired after the link was up.
	LinkLost
)

var linkStateNames = [...]string{"down", "up", "lost"}

// String implements fmt.Stringer.
func (s LinkState) String() string {
	if int(s) < len(linkStateNames) {
		return linkStateNames[s]
	}
	return "unknown"
}

// StateNotifier is called when link state changed.
type StateNotifier interface {
	StateChanged(context.Context, LinkState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, LinkState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state LinkState) {
	f(ctx, state)
}

// StateNotifiers fans a state change out to every notifier.
type StateNotifiers []StateNotifier

// StateChanged implements StateNotifier.
func (n StateNotifiers) StateChanged(ctx context.Context, state LinkState) {
	for _, notifier := range n {
		notifier.StateChanged(ctx, state)
	}
}

// EventObserver is told about every non-trivial receive event.
type EventObserver interface {
	ObserveFrameEvent(Event)
}

// DefaultPingTimeout is the max time between consecutive pings before
// the link is considered lost.
const DefaultPingTimeout = 5 * time.Second

// FIFO drives a Parser from a byte stream and writes replies back.
// Each byte is processed to completion, handler included, before the
// next one is read.
type FIFO struct {
	ReadWriter  io.ReadWriter
	Handler     FrameHandler
	Notifier    StateNotifier
	Observer    EventObserver
	PingTimeout time.Duration
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read

	state     LinkState
	lock      sync.RWMutex
	sendLock  sync.Mutex
	pingTimer <-chan time.Time
	parser    Parser
}

// NewFIFO creates a FIFO.
func NewFIFO(rw io.ReadWriter, handler FrameHandler) *FIFO {
	return &FIFO{
		ReadWriter:  rw,
		Handler:     handler,
		PingTimeout: DefaultPingTimeout,
	}
}

// State gets the link state.
func (f *FIFO) State() LinkState {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.state
}

// Send writes frames.
func (f *FIFO) Send(frames ...*Frame) error {
	f.sendLock.Lock()
	defer f.sendLock.Unlock()
	for _, frame := range frames {
		if _, err := frame.WriteTo(f.ReadWriter); err != nil {
			return err
		}
	}
	return nil
}

// PingReceived re-arms the ping watchdog. It must be called from
// the FrameHandler, i.e. within Run.
func (f *FIFO) PingReceived(ctx context.Context) {
	if f.PingTimeout > 0 {
		f.pingTimer = time.After(f.PingTimeout)
	}
	f.setState(ctx, LinkUp)
}

// Run processes the FIFO in the background.
func (f *FIFO) Run(ctx context.Context) error {
	f.parser.Reset()

	if f.ReadTimeout {
		buf := make([]byte, 1)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-f.pingTimer:
				f.pingExpired(ctx)
			default:
				n, err := f.ReadWriter.Read(buf)
				if err != nil {
					if !os.IsTimeout(err) {
						return err
					}
				} else if n > 0 {
					if err = f.applyParseResult(ctx, f.parser.Parse(buf[0])); err != nil {
						return err
					}
				}
			}
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			if err := f.applyParseResult(ctx, f.parser.Parse(b)); err != nil {
				return err
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-f.pingTimer:
			f.pingExpired(ctx)
		}
	}
}

func (f *FIFO) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		n, err := f.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (f *FIFO) applyParseResult(ctx context.Context, pr ParseResult) error {
	if pr.Event != EventIncomplete && f.Observer != nil {
		f.Observer.ObserveFrameEvent(pr.Event)
	}
	switch pr.Event {
	case EventOverflow:
		glog.V(2).Infof("frame overflow, %d bytes dropped", pr.Dropped)
	case EventFrameReady:
		if glog.V(3) {
			glog.Infof("RCV % x", pr.Frame)
		}
		if h := f.Handler; h != nil {
			return f.Send(h.HandleFrame(ctx, pr.Frame)...)
		}
	}
	return nil
}

func (f *FIFO) pingExpired(ctx context.Context) {
	f.pingTimer = nil
	glog.Warningf("no ping within %s, link lost", f.PingTimeout)
	f.setState(ctx, LinkLost)
}

func (f *FIFO) setState(ctx context.Context, state LinkState) {
	var notifier StateNotifier
	f.lock.Lock()
	if f.state != state {
		f.state = state
		notifier = f.Notifier
	}
	f.lock.Unlock()
	if notifier != nil {
		notifier.StateChanged(ctx, state)
	}
}
