package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("timeline,event\n"))
	}))
	defer srv.Close()

	body, err := New().Get(context.Background(), srv.URL+"/events.csv")
	require.NoError(t, err)
	assert.Equal(t, "timeline,event\n", string(body))
}

func TestGet_BearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	_, err := New(WithToken("secret-token-123")).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token-123", gotAuth)

	_, err = New().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no token, no header")
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(WithBackoff(time.Millisecond)).Get(context.Background(), srv.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := New(WithBackoff(time.Millisecond)).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(WithBackoff(time.Millisecond)).Get(context.Background(), srv.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestGet_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(WithBackoff(time.Hour)).Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoffDelay(t *testing.T) {
	c := New(WithBackoff(100 * time.Millisecond))
	assert.Equal(t, 100*time.Millisecond, c.backoffDelay(1, nil))
	assert.Equal(t, 400*time.Millisecond, c.backoffDelay(3, nil))

	limited := &StatusError{StatusCode: http.StatusTooManyRequests, retryAfter: "7"}
	assert.Equal(t, 7*time.Second, c.backoffDelay(1, limited))

	limited.retryAfter = "soon"
	assert.Equal(t, 200*time.Millisecond, c.backoffDelay(2, limited))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/events.csv"))
	assert.True(t, IsURL("http://localhost:8080/x"))
	assert.False(t, IsURL("events.csv"))
	assert.False(t, IsURL("/tmp/https://x"))
}

func TestGet_OversizedBodyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 17)))
	}))
	defer srv.Close()

	body, err := New(WithMaxBytes(16)).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, body)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")

	body, err = New(WithMaxBytes(17)).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, 17)
}
