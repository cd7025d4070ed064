package httpclient

import "context"

// TokenStore supplies the bearer credential attached to outgoing requests.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// Navigator performs a download navigation outside the instrumented client.
type Navigator interface {
	Navigate(ctx context.Context, nav Navigation) error
}

// AuthListener is notified when the server reports an expired or missing credential.
type AuthListener interface {
	OnAuthExpired(ctx context.Context, evt AuthExpiredEvent) error
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}
