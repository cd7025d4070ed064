// Package storage persists the bearer token between CLI invocations.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xppcnn/apiclient/pkg/httpclient"
)

// Store holds the single bearer token. It satisfies httpclient.TokenStore.
type Store interface {
	httpclient.TokenStore
	SetToken(ctx context.Context, token string) error
	Close() error
}

// Options controls retention for concrete store implementations.
type Options struct {
	// TokenTTL expires a stored token; zero keeps it until cleared.
	TokenTTL time.Duration
}

// tokenKey is the fixed key the token is stored under.
const tokenKey = "token"

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	if opts.TokenTTL < 0 {
		opts.TokenTTL = 0
	}

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return memoryStore{MemoryTokenStore: httpclient.NewMemoryTokenStore("")}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type memoryStore struct {
	*httpclient.MemoryTokenStore
}

func (memoryStore) Close() error { return nil }

type noopStore struct{}

func (noopStore) Close() error                           { return nil }
func (noopStore) Token(context.Context) (string, error)  { return "", nil }
func (noopStore) SetToken(context.Context, string) error { return nil }
func (noopStore) ClearToken(context.Context) error       { return nil }
