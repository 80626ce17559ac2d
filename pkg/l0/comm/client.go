package comm

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Result is the result of a command using Do.
type Result struct {
	// Data is the payload of the reply frame.
	Data []byte
	// Warnings are error codes reported before the reply, which do not
	// fail the command.
	Warnings []ErrorCode
}

// IsOK determines if the reply is the plain OK sentinel.
func (r Result) IsOK() bool {
	return len(r.Data) == 1 && r.Data[0] == ReplyOKCode
}

// Default timing of Client.
const (
	DefaultReplyTimeout = time.Second
	DefaultSettleTime   = 50 * time.Millisecond
)

// Client provides host side operations over a link. Only one command
// is outstanding at a time.
type Client struct {
	ReadWriter io.ReadWriter
	// Timeout bounds the wait for the first frame of a reply.
	Timeout time.Duration
	// Settle is how long an error frame waits for a following reply
	// before it is taken as the final outcome.
	Settle time.Duration

	frameCh chan *Frame
	errCh   chan error
	cmdLock sync.Mutex
}

// NewClient creates client and wraps the stream.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{
		ReadWriter: rw,
		Timeout:    DefaultReplyTimeout,
		Settle:     DefaultSettleTime,
		frameCh:    make(chan *Frame, 4),
		errCh:      make(chan error, 1),
	}
}

// Run reads and parses reply frames until the stream fails or ctx is done.
func (c *Client) Run(ctx context.Context) error {
	parser := NewReplyParser()
	buf := make([]byte, 1)
	for {
		n, err := c.ReadWriter.Read(buf)
		if err != nil {
			select {
			case c.errCh <- err:
			default:
			}
			return err
		}
		if n == 0 {
			continue
		}
		pr := parser.Parse(buf[0])
		if pr.Event != EventFrameReady {
			continue
		}
		frame, err := DecodeFrame(pr.Frame)
		if err != nil {
			glog.Warningf("drop reply % x: %v", pr.Frame, err)
			continue
		}
		select {
		case c.frameCh <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Do sends a command and waits for its result. An error frame which is
// not followed by a reply within Settle is returned as *CommandError.
// Payloads larger than MaxPayload fail with ErrPayloadTooLarge unsent.
func (c *Client) Do(ctx context.Context, payload ...byte) (res Result, err error) {
	if len(payload) > MaxPayload {
		err = ErrPayloadTooLarge
		return
	}
	c.cmdLock.Lock()
	defer c.cmdLock.Unlock()

	c.drain()
	if _, err = Command(payload...).WriteTo(c.ReadWriter); err != nil {
		return
	}

	timeout := time.After(c.Timeout)
	var pending *CommandError
	for {
		select {
		case frame := <-c.frameCh:
			if pending != nil {
				res.Warnings = append(res.Warnings, pending.Code)
				pending = nil
			}
			if !frame.IsError() {
				res.Data = frame.Data
				return
			}
			pending = &CommandError{Code: frame.ErrorCode()}
			timeout = time.After(c.Settle)
		case <-timeout:
			if pending != nil {
				err = pending
			} else {
				err = ErrNoReply
			}
			return
		case err = <-c.errCh:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Ping sends a keep-alive ping and expects the OK reply.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.Do(ctx, PingCode)
	if err == nil && !res.IsOK() {
		err = &CommandError{Code: ErrCodeBadComms}
	}
	return err
}

// drain discards frames left over from an earlier command.
func (c *Client) drain() {
	for {
		select {
		case frame := <-c.frameCh:
			glog.V(2).Infof("discard stale frame % x", frame.Bytes())
		default:
			return
		}
	}
}
