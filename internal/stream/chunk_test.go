package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/parley/internal/stream"
)

func TestBuffer_Append(t *testing.T) {
	t.Parallel()

	t.Run("preserves order", func(t *testing.T) {
		t.Parallel()

		var b stream.Buffer
		assert.True(t, b.Append(stream.Data("a")))
		assert.True(t, b.Append(stream.Data("b")))
		assert.True(t, b.Append(stream.Data("c")))

		assert.Equal(t, []stream.Chunk{stream.Data("a"), stream.Data("b"), stream.Data("c")}, b.Snapshot())
		assert.False(t, b.Terminated())
	})

	t.Run("rejects chunks after terminal", func(t *testing.T) {
		t.Parallel()

		var b stream.Buffer
		b.Append(stream.Data("a"))
		assert.True(t, b.Append(stream.Terminal()))

		assert.False(t, b.Append(stream.Data("late")))
		assert.False(t, b.Append(stream.Terminal()))
		assert.Equal(t, 2, b.Len())
		assert.True(t, b.Terminated())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		t.Parallel()

		var b stream.Buffer
		b.Append(stream.Data("a"))

		snap := b.Snapshot()
		snap[0] = stream.Data("mutated")

		assert.Equal(t, stream.Data("a"), b.Snapshot()[0])
	})

	t.Run("empty snapshot", func(t *testing.T) {
		t.Parallel()

		var b stream.Buffer
		assert.Empty(t, b.Snapshot())
		assert.Equal(t, 0, b.Len())
	})
}

func TestChunk_Constructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, stream.KindData, stream.Data("x").Kind)
	assert.False(t, stream.Data("x").IsTerminal())
	assert.True(t, stream.Terminal().IsTerminal())
	assert.Empty(t, stream.Terminal().Data)
}

func TestChannelListener(t *testing.T) {
	t.Parallel()

	t.Run("queues until full", func(t *testing.T) {
		t.Parallel()

		l := stream.NewChannelListener(2)
		assert.NoError(t, l.Send(stream.Data("a")))
		assert.NoError(t, l.Send(stream.Data("b")))
		assert.ErrorIs(t, l.Send(stream.Data("c")), stream.ErrListenerBacklog)

		assert.Equal(t, stream.Data("a"), <-l.Chunks())
		assert.Equal(t, stream.Data("b"), <-l.Chunks())
	})

	t.Run("close is idempotent and ends the queue", func(t *testing.T) {
		t.Parallel()

		l := stream.NewChannelListener(4)
		assert.NoError(t, l.Send(stream.Data("a")))
		assert.NoError(t, l.Close())
		assert.NoError(t, l.Close())
		assert.ErrorIs(t, l.Send(stream.Data("b")), stream.ErrListenerClosed)

		var got []stream.Chunk
		for c := range l.Chunks() {
			got = append(got, c)
		}
		assert.Equal(t, []stream.Chunk{stream.Data("a")}, got)
	})

	t.Run("non-positive buffer is clamped", func(t *testing.T) {
		t.Parallel()

		l := stream.NewChannelListener(0)
		assert.NoError(t, l.Send(stream.Data("a")))
		assert.ErrorIs(t, l.Send(stream.Data("b")), stream.ErrListenerBacklog)
	})

	t.Run("replay grows past the buffer and keeps live headroom", func(t *testing.T) {
		t.Parallel()

		l := stream.NewChannelListener(2)
		require.NoError(t, l.Send(stream.Data("queued")))

		replay := []stream.Chunk{stream.Data("a"), stream.Data("b"), stream.Data("c")}
		require.NoError(t, l.Replay(replay))

		assert.NoError(t, l.Send(stream.Data("live-1")))
		assert.NoError(t, l.Send(stream.Data("live-2")))
		assert.ErrorIs(t, l.Send(stream.Data("live-3")), stream.ErrListenerBacklog)
		require.NoError(t, l.Close())

		var got []stream.Chunk
		for c := range l.Chunks() {
			got = append(got, c)
		}
		assert.Equal(t, []stream.Chunk{
			stream.Data("queued"), stream.Data("a"), stream.Data("b"), stream.Data("c"),
			stream.Data("live-1"), stream.Data("live-2"),
		}, got)
	})

	t.Run("replay after close fails", func(t *testing.T) {
		t.Parallel()

		l := stream.NewChannelListener(2)
		require.NoError(t, l.Close())
		assert.ErrorIs(t, l.Replay([]stream.Chunk{stream.Data("a")}), stream.ErrListenerClosed)
	})
}
