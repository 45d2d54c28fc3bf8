package stream

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrListenerClosed is returned by Send after the listener was closed.
	ErrListenerClosed = errors.New("stream: listener closed") //nolint:gochecknoglobals // sentinel error

	// ErrListenerBacklog is returned when a listener's queue is full.
	ErrListenerBacklog = errors.New("stream: listener backlog full") //nolint:gochecknoglobals // sentinel error
)

// Listener is an output sink registered against one session.
//
// Send is called with the session lock held and must not block. A Send error
// detaches the listener. Close is called at most once by the session, after
// the terminal chunk was delivered or when the listener is detached.
type Listener interface {
	Send(c Chunk) error
	Close() error
}

// Replayer is implemented by listeners that accept the replayed history of a
// session in one call. Replay is called under the session lock, before any
// live chunk, and must not block. The replayed chunks never count against
// the listener's live backlog.
type Replayer interface {
	Replay(chunks []Chunk) error
}

// ChannelListener is a Listener backed by a bounded queue. A transport
// goroutine drains Chunks and writes each chunk to the remote client; the
// channel is closed once the listener is closed.
type ChannelListener struct {
	id     uuid.UUID
	buffer int

	mu     sync.Mutex
	ch     chan Chunk
	closed bool
}

// NewChannelListener creates a listener that can hold up to buffer undrained
// chunks before it is considered too slow and detached.
func NewChannelListener(buffer int) *ChannelListener {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelListener{
		id:     uuid.New(),
		buffer: buffer,
		ch:     make(chan Chunk, buffer),
	}
}

// ID identifies the listener in logs.
func (l *ChannelListener) ID() uuid.UUID {
	return l.id
}

// Chunks returns the queue drained by the transport. Replay may swap the
// queue, so the transport reads it only after Attach returned.
func (l *ChannelListener) Chunks() <-chan Chunk {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.ch
}

func (l *ChannelListener) Send(c Chunk) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrListenerClosed
	}

	select {
	case l.ch <- c:
		return nil
	default:
		return ErrListenerBacklog
	}
}

func (l *ChannelListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		l.closed = true
		close(l.ch)
	}
	return nil
}

// Replay queues chunks regardless of the backlog limit. When they do not fit,
// the queue is replaced by one that holds everything pending plus the replay,
// with the regular buffer left free for live chunks.
func (l *ChannelListener) Replay(chunks []Chunk) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrListenerClosed
	}

	if len(chunks) > cap(l.ch)-len(l.ch) {
		grown := make(chan Chunk, len(l.ch)+len(chunks)+l.buffer)
	drain:
		for {
			select {
			case c := <-l.ch:
				grown <- c
			default:
				break drain
			}
		}
		l.ch = grown
	}

	for _, c := range chunks {
		l.ch <- c
	}
	return nil
}
