package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/parley/internal/api/ws"
	"github.com/gosuda/parley/internal/domain"
	"github.com/gosuda/parley/internal/server/middleware"
	"github.com/gosuda/parley/internal/stream"
)

// fakeSubscriber hands out one channel per subscription and records the
// tenants requested.
type fakeSubscriber struct {
	mu      sync.Mutex
	tenants []string
	feeds   chan chan domain.TurnEvent
	err     error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{feeds: make(chan chan domain.TurnEvent, 1)}
}

func (f *fakeSubscriber) SubscribeTurnEvents(_ context.Context, tenantID string) (<-chan domain.TurnEvent, func(), error) {
	f.mu.Lock()
	f.tenants = append(f.tenants, tenantID)
	f.mu.Unlock()

	if f.err != nil {
		return nil, nil, f.err
	}
	ch := make(chan domain.TurnEvent, 4)
	f.feeds <- ch
	return ch, func() {}, nil
}

func (f *fakeSubscriber) subscribed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tenants...)
}

func startHub(t *testing.T, sessions *stream.Registry, events ws.Subscriber) string {
	t.Helper()

	hub := ws.NewHub(sessions, events, 16, []string{"*"})
	r := chi.NewRouter()
	r.Use(middleware.ResolveTenant())
	r.Get("/ws/stream/{chatId}", hub.ServeStream)
	r.Get("/ws/events", hub.ServeEvents)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestServeStream(t *testing.T) {
	t.Parallel()

	sessions := stream.NewRegistry()
	s, err := sessions.Create("c1")
	require.NoError(t, err)
	sessions.Append("c1", stream.Data("first"))

	base := startHub(t, sessions, nil)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, base+"/ws/stream/c1", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"chunk","data":"first"}`, string(data))

	require.Eventually(t, func() bool { return s.Stats().Listeners == 1 }, 2*time.Second, 5*time.Millisecond)
	sessions.Append("c1", stream.Data("second"))
	sessions.Append("c1", stream.Terminal())

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"chunk","data":"second"}`, string(data))

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"done","data":""}`, string(data))

	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestServeStream_ClientCloseDetaches(t *testing.T) {
	t.Parallel()

	sessions := stream.NewRegistry()
	s, err := sessions.Create("c1")
	require.NoError(t, err)

	base := startHub(t, sessions, nil)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, base+"/ws/stream/c1", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Stats().Listeners == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return s.Stats().Listeners == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestServeEvents(t *testing.T) {
	t.Parallel()

	t.Run("relays tenant events", func(t *testing.T) {
		t.Parallel()

		sub := newFakeSubscriber()
		base := startHub(t, stream.NewRegistry(), sub)

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		conn, _, err := websocket.Dial(ctx, base+"/ws/events?tenantId=acme", nil)
		require.NoError(t, err)
		defer conn.CloseNow()

		var feed chan domain.TurnEvent
		select {
		case feed = <-sub.feeds:
		case <-ctx.Done():
			t.Fatal("no subscription")
		}
		assert.Equal(t, []string{"acme"}, sub.subscribed())

		feed <- domain.TurnEvent{Type: domain.TurnStarted, TenantID: "acme", ChatID: "c1"}

		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var evt domain.TurnEvent
		require.NoError(t, json.Unmarshal(data, &evt))
		assert.Equal(t, domain.TurnStarted, evt.Type)
		assert.Equal(t, "c1", evt.ChatID)

		close(feed)
		_, _, err = conn.Read(ctx)
		assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	})

	t.Run("subscribe failure closes with internal error", func(t *testing.T) {
		t.Parallel()

		sub := newFakeSubscriber()
		sub.err = errors.New("redis down")
		base := startHub(t, stream.NewRegistry(), sub)

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		conn, _, err := websocket.Dial(ctx, base+"/ws/events", nil)
		require.NoError(t, err)
		defer conn.CloseNow()

		_, _, err = conn.Read(ctx)
		assert.Equal(t, websocket.StatusInternalError, websocket.CloseStatus(err))
		assert.Equal(t, []string{domain.DefaultTenantID}, sub.subscribed())
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		base := startHub(t, stream.NewRegistry(), nil)

		resp, err := http.Get("http" + strings.TrimPrefix(base, "ws") + "/ws/events")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})
}
