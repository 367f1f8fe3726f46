package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetch_FixedHeaders(t *testing.T) {
	var gotUA, gotRef string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRef = r.Header.Get("Referer")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cl := New(Options{Timeout: 2 * time.Second, UserAgent: "test-agent/1.0", Referer: "https://ref.example/"})
	resp, err := cl.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, "test-agent/1.0", gotUA)
	require.Equal(t, "https://ref.example/", gotRef)
}

func TestFetch_StatusErrorNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := New(Options{}).Get(context.Background(), srv.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	require.Equal(t, "maintenance", se.Body)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := New(Options{Timeout: 100 * time.Millisecond}).Get(context.Background(), srv.URL)
	require.Error(t, err)
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return
	}
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
