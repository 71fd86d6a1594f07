package adapter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPClient(maxElapsed time.Duration) *RealHTTPClient {
	c := NewHTTPClient(5*time.Second, maxElapsed).(*RealHTTPClient)
	c.initialBackoff = time.Millisecond
	return c
}

func TestPost_SendsBodyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "sha256=abc", r.Header.Get("X-Webhook-Signature"))
		assert.Equal(t, `{"ok":true}`, string(body))
		_, _ = w.Write([]byte("accepted"))
	}))
	defer server.Close()

	resp, err := newTestHTTPClient(time.Second).Post(context.Background(), server.URL, map[string]string{
		"Content-Type":        "application/json",
		"X-Webhook-Signature": "sha256=abc",
	}, []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.Equal(t, "accepted", string(resp))
}

func TestPost_RetriesServerErrorsWithFullBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body), "body must be resent on every attempt")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	_, err := newTestHTTPClient(5*time.Second).Post(context.Background(), server.URL, nil, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPost_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad signature"))
	}))
	defer server.Close()

	_, err := newTestHTTPClient(5*time.Second).Post(context.Background(), server.URL, nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "bad signature", statusErr.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPost_NoRetryWhenDisabled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestHTTPClient(0).Post(context.Background(), server.URL, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
