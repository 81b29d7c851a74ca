package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GETWithBaseURLAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "screener", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"price": 187.5}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithHeader("User-Agent", "screener"))
	resp, err := c.Do(NewRequest(http.MethodGet, "/v1/quote").WithQuery("symbol", "AAPL"))
	require.NoError(t, err)

	var body struct {
		Price float64 `json:"price"`
	}
	require.NoError(t, resp.ParseJSON(&body))
	assert.Equal(t, 187.5, body.Price)
}

func TestClient_FormAndBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	req := NewRequest(http.MethodPost, srv.URL).
		WithForm(url.Values{"grant_type": {"client_credentials"}}).
		WithBasicAuth("id", "secret")
	_, err := NewClient().Do(req)
	require.NoError(t, err)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such symbol", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient().GET(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}

func TestClient_DoWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}
	resp, err := NewClient().DoWithRetry(NewRequest(http.MethodGet, srv.URL), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.String())
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_DoWithRetry_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	_, err := NewClient().DoWithRetry(NewRequest(http.MethodGet, srv.URL), cfg)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.EqualValues(t, 1, calls.Load())
}
