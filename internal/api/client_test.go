// internal/api/client_test.go
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:9000/", time.Second)
	assert.Equal(t, "http://localhost:9000", c.BaseURL())
	require.NotNil(t, c.httpClient)
	assert.Zero(t, c.httpClient.Timeout, "feeds must not be cut by a request timeout")
}

func TestNowPlaying(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/now-playing", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		fmt.Fprint(w, "data: [\"a\",\"b\"]\n\n")
	}))
	defer server.Close()

	r, err := New(server.URL, time.Second).NowPlaying(context.Background())
	require.NoError(t, err)
	defer r.Close()

	line, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, line)

	_, err = r.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/abc", r.URL.Path)
		fmt.Fprint(w, "data: {\"turn\":1}\n\ndata: {\"turn\":2}\n\n")
	}))
	defer server.Close()

	r, err := New(server.URL+"/", time.Second).Events(context.Background(), "abc")
	require.NoError(t, err)
	defer r.Close()

	var lines []string
	for line, err := range r.All(context.Background()) {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	assert.Equal(t, []string{`{"turn":1}`, `{"turn":2}`}, lines)
}

func TestEvents_EmptyID(t *testing.T) {
	_, err := New("http://localhost:9000", time.Second).Events(context.Background(), "")
	require.Error(t, err)
}

func TestOpen_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Events(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOpen_ServerDown(t *testing.T) {
	_, err := New("http://localhost:59999", time.Second).NowPlaying(context.Background()) // unlikely to be listening
	require.Error(t, err)
}

func TestOpen_CancelClosesStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: first\n")
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	r, err := New(server.URL, time.Second).Events(ctx, "slow")
	require.NoError(t, err)

	line, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	cancel()
	_, err = r.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
