package httpclient

import (
	"context"
	"time"
)

// Option customizes a single call.
type Option func(*requestOptions)

type requestOptions struct {
	skipErrorHandler bool
	withoutToken     bool
	headers          map[string]string
	timeout          time.Duration
}

// SkipErrorHandler suppresses centralized logging, token clearing and
// auth-expired notification. The error is still returned to the caller.
func SkipErrorHandler() Option {
	return func(o *requestOptions) { o.skipErrorHandler = true }
}

// WithoutToken disables Authorization header injection.
func WithoutToken() Option {
	return func(o *requestOptions) { o.withoutToken = true }
}

// WithHeader sets a single request header.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if key == "" {
			return
		}
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithHeaders merges headers into the request.
func WithHeaders(headers map[string]string) Option {
	return func(o *requestOptions) {
		for k, v := range headers {
			WithHeader(k, v)(o)
		}
	}
}

// WithTimeout bounds the call with a context deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *requestOptions) { o.timeout = d }
}

func buildOptions(opts []Option) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// callState carries per-call options into the resty hooks and the decoded
// envelope back out of them.
type callState struct {
	opts     requestOptions
	envelope *RawEnvelope
}

type callStateKey struct{}

func withCallState(ctx context.Context, state *callState) context.Context {
	return context.WithValue(ctx, callStateKey{}, state)
}

func callStateFrom(ctx context.Context) *callState {
	if ctx != nil {
		if state, ok := ctx.Value(callStateKey{}).(*callState); ok && state != nil {
			return state
		}
	}
	return &callState{}
}
