package stream

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Session is the streaming state of one chat turn: its chunk log and the
// listeners currently attached to it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	buf       Buffer
	listeners map[Listener]struct{}
	expiry    *time.Timer
}

// Stats is a point-in-time summary of a session.
type Stats struct {
	Chunks    int
	Done      bool
	Listeners int
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		listeners: make(map[Listener]struct{}),
	}
}

// Stats returns the current chunk count, completion state and listener count.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Chunks:    s.buf.Len(),
		Done:      s.buf.Terminated(),
		Listeners: len(s.listeners),
	}
}

// Snapshot returns the chunks emitted so far.
func (s *Session) Snapshot() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.Snapshot()
}

// append logs c and fans it out to every attached listener.
func (s *Session) append(c Chunk) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.buf.Append(c) {
		return false
	}

	for l := range s.listeners {
		s.deliverLocked(l, c)
	}
	return true
}

// attach subscribes l and replays the chunks logged so far. The listener is
// registered before the replay, and both happen under the session lock, so no
// chunk can be appended between the snapshot and the subscription. A Replayer
// takes the snapshot in one call; other listeners get it chunk by chunk.
func (s *Session) attach(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners[l] = struct{}{}

	snapshot := s.buf.Snapshot()
	r, ok := l.(Replayer)
	if !ok {
		for _, c := range snapshot {
			if !s.deliverLocked(l, c) {
				return
			}
		}
		return
	}

	if len(snapshot) == 0 {
		return
	}
	if err := r.Replay(snapshot); err != nil {
		log.Debug().Err(err).Str("chat_id", s.ID).Msg("stream: dropping listener after failed replay")
		s.dropLocked(l)
		return
	}
	if snapshot[len(snapshot)-1].IsTerminal() {
		s.dropLocked(l)
	}
}

func (s *Session) detach(l Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listeners[l]; !ok {
		return false
	}
	s.dropLocked(l)
	return true
}

// deliverLocked sends c to l. It returns false when l was dropped, either
// because the sink failed or because c was the terminal chunk.
func (s *Session) deliverLocked(l Listener, c Chunk) bool {
	if err := l.Send(c); err != nil {
		log.Debug().Err(err).Str("chat_id", s.ID).Msg("stream: dropping listener after failed send")
		s.dropLocked(l)
		return false
	}

	if c.IsTerminal() {
		s.dropLocked(l)
		return false
	}
	return true
}

func (s *Session) dropLocked(l Listener) {
	delete(s.listeners, l)
	if err := l.Close(); err != nil {
		log.Debug().Err(err).Str("chat_id", s.ID).Msg("stream: listener close failed")
	}
}

// setExpiryLocked replaces the pending removal timer.
func (s *Session) setExpiryLocked(t *time.Timer) {
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.expiry = t
}

func (s *Session) stopExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setExpiryLocked(nil)
}
