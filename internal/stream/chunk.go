package stream

// Kind distinguishes content chunks from the terminal marker. The values are
// the event names used on the wire.
type Kind string

const (
	KindData     Kind = "chunk"
	KindTerminal Kind = "done"
)

// Chunk is one unit of incremental reply content, or the terminal marker.
type Chunk struct {
	Kind Kind   `json:"event"`
	Data string `json:"data"`
}

// Data returns a content chunk carrying payload.
func Data(payload string) Chunk {
	return Chunk{Kind: KindData, Data: payload}
}

// Terminal returns the end-of-stream marker.
func Terminal() Chunk {
	return Chunk{Kind: KindTerminal}
}

// IsTerminal reports whether c marks the end of a session's stream.
func (c Chunk) IsTerminal() bool {
	return c.Kind == KindTerminal
}

// Buffer is the append-only ordered log of chunks emitted for one session.
// It is not safe for concurrent use; the owning Session serializes access.
type Buffer struct {
	chunks     []Chunk
	terminated bool
}

// Append adds c to the log. It returns false, leaving the log unchanged, once
// a terminal chunk has been appended.
func (b *Buffer) Append(c Chunk) bool {
	if b.terminated {
		return false
	}
	b.chunks = append(b.chunks, c)
	if c.IsTerminal() {
		b.terminated = true
	}
	return true
}

// Snapshot returns a copy of the chunks appended so far, in order.
func (b *Buffer) Snapshot() []Chunk {
	out := make([]Chunk, len(b.chunks))
	copy(out, b.chunks)
	return out
}

// Len returns the number of chunks in the log.
func (b *Buffer) Len() int {
	return len(b.chunks)
}

// Terminated reports whether the terminal chunk has been appended.
func (b *Buffer) Terminated() bool {
	return b.terminated
}
