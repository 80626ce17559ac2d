package comm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	reply  func(cmd *Frame) [][]byte
	out    chan byte
	parser Parser
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	for _, b := range p {
		if pr := d.parser.Parse(b); pr.Event == EventFrameReady {
			cmd, err := DecodeFrame(pr.Frame)
			if err != nil {
				return 0, err
			}
			for _, raw := range d.reply(cmd) {
				for _, rb := range raw {
					d.out <- rb
				}
			}
		}
	}
	return len(p), nil
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	b, ok := <-d.out
	if !ok {
		return 0, io.EOF
	}
	p[0] = b
	return 1, nil
}

func frames(fs ...*Frame) [][]byte {
	raw := make([][]byte, len(fs))
	for n, f := range fs {
		raw[n] = f.Bytes()
	}
	return raw
}

func newClientTestEnv(t *testing.T, reply func(cmd *Frame) [][]byte) (*Client, func()) {
	dev := &fakeDevice{reply: reply, out: make(chan byte, 64)}
	client := NewClient(dev)
	client.Timeout = 100 * time.Millisecond
	client.Settle = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		client.Run(ctx)
		close(done)
	}()
	return client, func() {
		cancel()
		close(dev.out)
		<-done
	}
}

func TestClient(t *testing.T) {
	testCases := []struct {
		name     string
		payload  []byte
		reply    [][]byte
		data     []byte
		warnings []ErrorCode
		err      error
	}{
		{
			name:    "ok",
			payload: []byte{0x01, 0x02},
			reply:   frames(ReplyOK()),
			data:    []byte{ReplyOKCode},
		},
		{
			name:    "data",
			payload: []byte{0x03, 0x01},
			reply:   frames(Reply(0x34, 0x12)),
			data:    []byte{0x34, 0x12},
		},
		{
			name:    "error",
			payload: []byte{0x05, 0x01},
			reply:   frames(Error(ErrCodeNoTemperature)),
			err:     &CommandError{Code: ErrCodeNoTemperature},
		},
		{
			name:     "warning then ok",
			payload:  []byte{0x01, 0x01, 0x63},
			reply:    frames(Error(ErrCodeInvalidVolume), ReplyOK()),
			data:     []byte{ReplyOKCode},
			warnings: []ErrorCode{ErrCodeInvalidVolume},
		},
		{
			name:    "no reply",
			payload: []byte{0x04, 0x01},
			err:     ErrNoReply,
		},
		{
			name:    "corrupted reply dropped",
			payload: []byte{0x04, 0x01},
			reply:   [][]byte{{StartReply, 0x01, ReplyOKCode, 0x00}},
			err:     ErrNoReply,
		},
		{
			name:    "noise before reply",
			payload: []byte{0x04, 0x02},
			reply:   [][]byte{{0x00, 0x13, StartCommand}, ReplyOK().Bytes()},
			data:    []byte{ReplyOKCode},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var sent []*Frame
			client, stop := newClientTestEnv(t, func(cmd *Frame) [][]byte {
				sent = append(sent, cmd)
				return tc.reply
			})
			defer stop()
			res, err := client.Do(context.Background(), tc.payload...)
			require.Equal(t, tc.err, err)
			require.Equal(t, []*Frame{Command(tc.payload...)}, sent)
			if tc.err == nil {
				require.Equal(t, tc.data, res.Data)
				require.Equal(t, tc.warnings, res.Warnings)
			}
		})
	}
}

func TestClientPing(t *testing.T) {
	client, stop := newClientTestEnv(t, func(cmd *Frame) [][]byte {
		if cmd.Data[0] == PingCode {
			return frames(ReplyOK())
		}
		return frames(Error(ErrCodeBadCommand))
	})
	defer stop()
	require.NoError(t, client.Ping(context.Background()))
	_, err := client.Do(context.Background(), 0x09, 0x01)
	require.Equal(t, ErrCodeBadCommand, CodeOf(err))
}

func TestClientContextCanceled(t *testing.T) {
	client, stop := newClientTestEnv(t, func(cmd *Frame) [][]byte { return nil })
	defer stop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Do(ctx, 0x01, 0x02)
	require.Equal(t, context.Canceled, err)
}

func TestClientPayloadTooLarge(t *testing.T) {
	sent := 0
	client, stop := newClientTestEnv(t, func(cmd *Frame) [][]byte {
		sent++
		return frames(ReplyOK())
	})
	defer stop()
	_, err := client.Do(context.Background(), make([]byte, MaxPayload+1)...)
	require.Equal(t, ErrPayloadTooLarge, err)
	res, err := client.Do(context.Background(), make([]byte, MaxPayload)...)
	require.NoError(t, err)
	require.True(t, res.IsOK())
	require.Equal(t, 1, sent)
}
