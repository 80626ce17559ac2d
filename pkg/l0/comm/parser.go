package comm

// Parser reassembles frames from bytes received.
// The zero value accepts command frames up to RxBufferSize bytes.
type Parser struct {
	starts []byte
	size   int

	state       ReceiveState
	buf         [MaxReplySize]byte
	pos         int
	expectedLen int
}

// ReceiveState is the state of frame reassembly.
type ReceiveState int

const (
	// StateIdle means no bytes are buffered.
	StateIdle ReceiveState = iota
	// StateAwaitingLength means a start code was seen.
	StateAwaitingLength
	// StateAwaitingPayload means the length is known and payload plus
	// checksum are being accumulated.
	StateAwaitingPayload
)

// Event is the outcome of feeding one byte.
type Event int

const (
	// EventIncomplete means more bytes are needed, or the byte was noise.
	EventIncomplete Event = iota
	// EventFrameReady means a complete frame is available in the result.
	EventFrameReady
	// EventOverflow means the partial frame hit the buffer bound and
	// was discarded.
	EventOverflow
)

var eventNames = [...]string{"incomplete", "ready", "overflow"}

// String implements fmt.Stringer.
func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Event Event
	// Frame is the raw frame, start code to checksum inclusive.
	Frame []byte
	// Length is the declared payload length of Frame.
	Length byte
	// Dropped is the number of buffered bytes discarded on overflow.
	Dropped int
}

// NewReplyParser creates a Parser accepting reply and error frames up to
// MaxReplySize bytes, used on the host side of the link.
func NewReplyParser() *Parser {
	return &Parser{starts: []byte{StartReply, StartError}, size: MaxReplySize}
}

// State gets the current receive state.
func (p *Parser) State() ReceiveState {
	return p.state
}

// Buffered gets the number of bytes of the partial frame.
func (p *Parser) Buffered() int {
	return p.pos
}

// Reset discards any partial frame.
func (p *Parser) Reset() {
	p.state, p.pos, p.expectedLen = StateIdle, 0, 0
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case StateIdle:
		if !p.isStart(b) {
			return
		}
		p.buf[0], p.pos = b, 1
		p.state = StateAwaitingLength
		return
	case StateAwaitingLength:
		p.buf[1], p.pos = b, 2
		p.expectedLen = int(b)
		p.state = StateAwaitingPayload
	case StateAwaitingPayload:
		p.buf[p.pos] = b
		p.pos++
	}

	if p.pos == p.expectedLen+FrameOverhead {
		pr.Event = EventFrameReady
		pr.Frame = make([]byte, p.pos)
		copy(pr.Frame, p.buf[:p.pos])
		pr.Length = byte(p.expectedLen)
		p.Reset()
		return
	}
	if p.pos >= p.capacity() {
		pr.Event, pr.Dropped = EventOverflow, p.pos
		p.Reset()
	}
	return
}

func (p *Parser) capacity() int {
	if p.size == 0 {
		return RxBufferSize
	}
	return p.size
}

func (p *Parser) isStart(b byte) bool {
	if p.starts == nil {
		return b == StartCommand
	}
	for _, s := range p.starts {
		if b == s {
			return true
		}
	}
	return false
}
