package authclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenServer accepts only the given token and returns 401 otherwise.
func tokenServer(t *testing.T, accept *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+accept.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestDo_RefreshesOn401AndRetriesOnce(t *testing.T) {
	var accept atomic.Value
	accept.Store("fresh")
	srv := tokenServer(t, &accept)
	defer srv.Close()

	var refreshes atomic.Int32
	c := New(srv.Client(), func(context.Context) (string, error) {
		refreshes.Add(1)
		return "fresh", nil
	}, "stale")

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, "fresh", c.Token())
}

func TestDo_NoRefreshWhenTokenValid(t *testing.T) {
	var accept atomic.Value
	accept.Store("good")
	srv := tokenServer(t, &accept)
	defer srv.Close()

	c := New(srv.Client(), func(context.Context) (string, error) {
		t.Fatal("refresh must not run")
		return "", nil
	}, "good")

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_ConcurrentRequestsShareOneRefresh(t *testing.T) {
	const workers = 8

	var accept atomic.Value
	accept.Store("fresh")
	srv := tokenServer(t, &accept)
	defer srv.Close()

	// The refresh blocks until released, so every worker gets its 401 and
	// joins the same in-flight refresh instead of starting its own.
	release := make(chan struct{})
	var refreshes atomic.Int32
	c := New(srv.Client(), func(context.Context) (string, error) {
		refreshes.Add(1)
		<-release
		return "fresh", nil
	}, "stale")

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			resp, err := c.Do(req)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					err = fmt.Errorf("status %d", resp.StatusCode)
				}
			}
			results <- err
		}()
	}

	// Give every worker time to hit its 401 and pile onto the refresh.
	time.Sleep(200 * time.Millisecond)
	close(release)

	wg.Wait()
	close(results)
	for err := range results {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshes.Load(), "all workers share one refresh")
}

func TestDo_RefreshFailurePropagates(t *testing.T) {
	var accept atomic.Value
	accept.Store("never")
	srv := tokenServer(t, &accept)
	defer srv.Close()

	c := New(srv.Client(), func(context.Context) (string, error) {
		return "", fmt.Errorf("identity service down")
	}, "stale")

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.Do(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity service down")
}
