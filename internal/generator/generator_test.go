package generator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/parley/internal/generator"
	"github.com/gosuda/parley/internal/responder"
)

func TestHTTPClient_Generate(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "t1", r.Header.Get("X-Tenant-Id"))

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "t1", body["tenantId"])
			assert.Equal(t, "hello", body["text"])
			assert.Equal(t, "echo", body["provider"])
			assert.Equal(t, true, body["slow"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"provider":"echo","reply":"Echo: hello","metadata":{"providedBy":"echo"}}`))
		}))
		defer srv.Close()

		c := generator.NewHTTPClient(srv.URL, time.Second)

		reply, err := c.Generate(context.Background(), "t1", "hello", generator.Options{Provider: "echo", Slow: true})
		require.NoError(t, err)
		assert.Equal(t, "Echo: hello", reply.Text)
		assert.Equal(t, "echo", reply.Metadata["providedBy"])
	})

	t.Run("optional fields omitted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotContains(t, body, "provider")
			assert.NotContains(t, body, "slow")
			_, _ = w.Write([]byte(`{"reply":"ok"}`))
		}))
		defer srv.Close()

		reply, err := generator.NewHTTPClient(srv.URL, time.Second).Generate(context.Background(), "t1", "x", generator.Options{})
		require.NoError(t, err)
		assert.Equal(t, "ok", reply.Text)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"responder error"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		reply, err := generator.NewHTTPClient(srv.URL, time.Second).Generate(context.Background(), "t1", "x", generator.Options{})
		require.Error(t, err)
		assert.Nil(t, reply)
		assert.ErrorIs(t, err, generator.ErrGenerator)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := generator.NewHTTPClient(srv.URL, time.Second).Generate(context.Background(), "t1", "x", generator.Options{})
		assert.ErrorIs(t, err, generator.ErrGenerator)
	})

	t.Run("unreachable responder", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := generator.NewHTTPClient(url, time.Second).Generate(context.Background(), "t1", "x", generator.Options{})
		assert.ErrorIs(t, err, generator.ErrGenerator)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := generator.NewHTTPClient(srv.URL, 20*time.Millisecond).Generate(context.Background(), "t1", "x", generator.Options{})
		assert.ErrorIs(t, err, generator.ErrGenerator)
	})
}

func TestLocal_Generate(t *testing.T) {
	t.Parallel()

	t.Run("selects engine and fills metadata", func(t *testing.T) {
		t.Parallel()

		g := generator.NewLocal(responder.NewDefaultRegistry("rule"))

		reply, err := g.Generate(context.Background(), "t1", "one two", generator.Options{Provider: "echo"})
		require.NoError(t, err)
		assert.Equal(t, "Echo: two one", reply.Text)
		assert.Equal(t, "echo", reply.Metadata["providedBy"])
		assert.Equal(t, 3, reply.Metadata["wordCount"])
	})

	t.Run("no engine is a generator failure", func(t *testing.T) {
		t.Parallel()

		g := generator.NewLocal(responder.NewRegistry("missing"))

		_, err := g.Generate(context.Background(), "t1", "hello", generator.Options{})
		assert.ErrorIs(t, err, generator.ErrGenerator)
		assert.ErrorIs(t, err, responder.ErrUnknownProvider)
	})
}
