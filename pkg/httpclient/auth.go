package httpclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Sources of an auth-expired event.
const (
	SourceApplication = "application"
	SourceTransport   = "transport"
)

const defaultLoginPath = "/login"

// AuthExpiredEvent is emitted on a 401, either as an envelope code or as an
// HTTP status. RedirectTo is the configured login path; the host decides
// whether to navigate there.
type AuthExpiredEvent struct {
	Source     string `json:"source"`
	Code       int    `json:"code"`
	URL        string `json:"url"`
	RedirectTo string `json:"redirect_to"`
}

// AuthListenerFunc adapts a plain function to AuthListener.
type AuthListenerFunc func(ctx context.Context, evt AuthExpiredEvent) error

func (f AuthListenerFunc) OnAuthExpired(ctx context.Context, evt AuthExpiredEvent) error {
	return f(ctx, evt)
}

// authFanout dispatches events to every registered listener.
type authFanout struct {
	mu        sync.RWMutex
	listeners []AuthListener
}

func (f *authFanout) add(l AuthListener) {
	if l == nil {
		return
	}
	f.mu.Lock()
	f.listeners = append(f.listeners, l)
	f.mu.Unlock()
}

// Notify forwards the event to every listener and returns how many handled
// it without error.
func (f *authFanout) Notify(ctx context.Context, evt AuthExpiredEvent) (int, error) {
	f.mu.RLock()
	listeners := append([]AuthListener(nil), f.listeners...)
	f.mu.RUnlock()

	var errs []error
	successful := 0
	for i, l := range listeners {
		if err := l.OnAuthExpired(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("auth listener[%d]: %w", i, err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of registered listeners.
func (f *authFanout) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.listeners)
}

// expireSession clears the stored token and notifies listeners.
func (c *Client) expireSession(ctx context.Context, source string, code int, url string) {
	if err := c.tokens.ClearToken(ctx); err != nil {
		c.log.ErrorObj("token clear failed", "auth_error", map[string]any{
			"source": source,
			"error":  err.Error(),
		})
	}

	evt := AuthExpiredEvent{
		Source:     source,
		Code:       code,
		URL:        url,
		RedirectTo: c.loginPath,
	}
	if _, err := c.listeners.Notify(ctx, evt); err != nil {
		c.log.ErrorObj("auth listener failed", "auth_error", map[string]any{
			"source": source,
			"error":  err.Error(),
		})
	}
}
