package comm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type parserTestSequence struct {
	in    []byte
	final ParseResult
}

type parserTestSequenceBuilder struct {
	seq []parserTestSequence
}

func parserTestSequences() *parserTestSequenceBuilder {
	return &parserTestSequenceBuilder{}
}

func (b *parserTestSequenceBuilder) on(in ...byte) *parserTestSequenceBuilder {
	b.seq = append(b.seq, parserTestSequence{in: in})
	return b
}

func (b *parserTestSequenceBuilder) frame(payload ...byte) *parserTestSequenceBuilder {
	raw := Command(payload...).Bytes()
	return b.on(raw...).ready(raw...)
}

func (b *parserTestSequenceBuilder) ready(raw ...byte) *parserTestSequenceBuilder {
	b.seq[len(b.seq)-1].final = ParseResult{Event: EventFrameReady, Frame: raw, Length: raw[1]}
	return b
}

func (b *parserTestSequenceBuilder) overflow() *parserTestSequenceBuilder {
	b.seq[len(b.seq)-1].final = ParseResult{Event: EventOverflow, Dropped: RxBufferSize}
	return b
}

func (b *parserTestSequenceBuilder) build() []parserTestSequence {
	return b.seq
}

func TestParser(t *testing.T) {
	long := make([]byte, MaxPayload)
	for i := range long {
		long[i] = byte(i + 1)
	}
	testCases := []struct {
		name string
		seq  []parserTestSequence
	}{
		{
			name: "single frame",
			seq: parserTestSequences().
				frame(0x01, 0x03).
				build(),
		},
		{
			name: "ping",
			seq: parserTestSequences().
				frame(PingCode).
				build(),
		},
		{
			name: "back to back",
			seq: parserTestSequences().
				frame(0x01, 0x03).
				frame(0x04, 0x03, 0x10, 0x00).
				frame(PingCode).
				build(),
		},
		{
			name: "empty payload",
			seq: parserTestSequences().
				on(StartCommand, 0x00, 0x55).ready(StartCommand, 0x00, 0x55).
				build(),
		},
		{
			name: "noise before start",
			seq: parserTestSequences().
				on(0x00, 0x01, 0xA0, 0xA1, 0xFF, 0x7E).
				frame(0x03, 0x01).
				build(),
		},
		{
			name: "largest frame fits buffer",
			seq: parserTestSequences().
				frame(long...).
				build(),
		},
		{
			name: "declared length exceeds buffer",
			seq: parserTestSequences().
				on(StartCommand, 0x30, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18).overflow().
				on(19, 20, 21).
				frame(0x01, 0x03).
				build(),
		},
		{
			name: "length one past buffer",
			seq: parserTestSequences().
				on(append(append([]byte{StartCommand, MaxPayload + 1}, long...), 0x00)...).overflow().
				frame(PingCode).
				build(),
		},
		{
			name: "start code inside payload",
			seq: parserTestSequences().
				frame(0x06, StartCommand, StartCommand).
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser Parser
			for n, s := range tc.seq {
				var pr ParseResult
				l := len(s.in)
				for i, b := range s.in {
					pr = parser.Parse(b)
					if i+1 < l {
						require.Equalf(t, ParseResult{}, pr, "seq[%d][%d] expect mismatch", n, i)
					}
					require.LessOrEqual(t, parser.Buffered(), RxBufferSize)
				}
				require.Equalf(t, s.final, pr, "seq[%d] final mismatch", n)
			}
			require.Equal(t, StateIdle, parser.State())
		})
	}
}

func TestParserStates(t *testing.T) {
	var parser Parser
	require.Equal(t, StateIdle, parser.State())
	parser.Parse(0x42)
	require.Equal(t, StateIdle, parser.State())
	parser.Parse(StartCommand)
	require.Equal(t, StateAwaitingLength, parser.State())
	parser.Parse(0x02)
	require.Equal(t, StateAwaitingPayload, parser.State())
	require.Equal(t, 2, parser.Buffered())
	parser.Reset()
	require.Equal(t, StateIdle, parser.State())
	require.Zero(t, parser.Buffered())
}

func TestReplyParser(t *testing.T) {
	parser := NewReplyParser()
	var frames [][]byte
	in := append([]byte{StartCommand, 0x01}, ReplyOK().Bytes()...)
	in = append(in, Error(ErrCodeNoBattery).Bytes()...)
	for _, b := range in {
		if pr := parser.Parse(b); pr.Event == EventFrameReady {
			frames = append(frames, pr.Frame)
		}
	}
	require.Equal(t, [][]byte{ReplyOK().Bytes(), Error(ErrCodeNoBattery).Bytes()}, frames)
}

func TestReplyParserLongReply(t *testing.T) {
	data := make([]byte, 22)
	for i := range data {
		data[i] = byte('A' + i)
	}
	long := Reply(data...).Bytes()
	require.Len(t, long, 25)

	parser := NewReplyParser()
	var pr ParseResult
	for _, b := range long {
		pr = parser.Parse(b)
		require.NotEqual(t, EventOverflow, pr.Event)
	}
	require.Equal(t, EventFrameReady, pr.Event)
	require.Equal(t, long, pr.Frame)

	// command frames keep the device bound
	var dev Parser
	cmd := Command(data...).Bytes()
	var events []Event
	for _, b := range cmd {
		if pr := dev.Parse(b); pr.Event != EventIncomplete {
			events = append(events, pr.Event)
		}
	}
	require.Equal(t, []Event{EventOverflow}, events)
}

func TestEventString(t *testing.T) {
	require.Equal(t, "ready", EventFrameReady.String())
	require.Equal(t, "overflow", EventOverflow.String())
	require.Equal(t, "unknown", Event(9).String())
}
