// Package authclient provides an HTTP client that attaches a bearer token
// and transparently refreshes it on 401 responses.
//
// The refresh is a per-instance single-flight: when several in-flight
// requests hit 401 at once, exactly one refresh runs and the rest wait for
// its result. Nothing is module-global, so independent clients (and tests)
// never share refresh state.
package authclient

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"
)

// TokenSource obtains a fresh bearer token, e.g. by redeeming a refresh
// token against the identity service.
type TokenSource func(ctx context.Context) (string, error)

// Doer is the subset of *http.Client the client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps a Doer with bearer-token auth and retry-once-on-401.
type Client struct {
	doer    Doer
	refresh TokenSource

	mu    sync.RWMutex
	token string

	sf singleflight.Group
}

// New creates a Client. initialToken may be empty; the first 401 will
// trigger a refresh.
func New(doer Doer, refresh TokenSource, initialToken string) *Client {
	return &Client{
		doer:    doer,
		refresh: refresh,
		token:   initialToken,
	}
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

// refreshToken runs the token source at most once across concurrent
// callers; losers of the race wait and reuse the winner's token.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := c.sf.Do("refresh", func() (any, error) {
		t, err := c.refresh(ctx)
		if err != nil {
			return "", errors.Wrap(err, "refresh token")
		}
		c.setToken(t)
		return t, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Do sends the request with the current token. On a 401 it refreshes the
// token (single-flight) and retries exactly once. Requests must have a
// replayable (or nil) body; use http.NewRequest with a bytes.Reader.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.send(req, c.Token())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	_ = resp.Body.Close()

	token, err := c.refreshToken(req.Context())
	if err != nil {
		return nil, err
	}
	return c.send(req, token)
}

func (c *Client) send(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "replay request body")
		}
		clone.Body = body
	}
	if token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	return c.doer.Do(clone)
}
