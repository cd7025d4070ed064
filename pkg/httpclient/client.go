// Package httpclient is a request wrapper over resty that attaches bearer
// tokens, normalizes envelope responses and centralizes error reporting.
package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout = 10 * time.Second

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-Id"

	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"
)

// Config wires a Client. Zero values fall back to sensible defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Headers   map[string]string
	Tokens    TokenStore
	Navigator Navigator
	// LoginPath is reported in AuthExpiredEvent.RedirectTo (default "/login").
	LoginPath string
	Logger    Logger
}

// Client is safe for concurrent use.
type Client struct {
	rest      *resty.Client
	baseURL   string
	timeout   time.Duration
	tokens    TokenStore
	navigator Navigator
	loginPath string
	log       Logger
	listeners authFanout
}

// New builds a Client with the request, response and error hooks installed.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = noTokenStore{}
	}
	loginPath := strings.TrimSpace(cfg.LoginPath)
	if loginPath == "" {
		loginPath = defaultLoginPath
	}

	c := &Client{
		baseURL:   strings.TrimSpace(cfg.BaseURL),
		timeout:   timeout,
		tokens:    tokens,
		navigator: cfg.Navigator,
		loginPath: loginPath,
		log:       ensureLogger(cfg.Logger),
	}

	rc := newRestyBaseClient(timeout)
	rc.SetBaseURL(c.baseURL)
	rc.SetHeader(headerContentType, contentTypeJSON)
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}
	rc.OnBeforeRequest(c.beforeRequest)
	rc.OnAfterResponse(c.afterResponse)
	rc.OnError(c.onError)
	c.rest = rc

	return c
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// OnAuthExpired registers a listener for 401 responses.
func (c *Client) OnAuthExpired(l AuthListener) {
	c.listeners.add(l)
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get sends params as the query string.
func (c *Client) Get(ctx context.Context, path string, params Params, opts ...Option) (*RawEnvelope, error) {
	return c.do(ctx, http.MethodGet, path, opts, func(req *resty.Request) {
		if q := params.strings(); len(q) > 0 {
			req.SetQueryParams(q)
		}
	})
}

// Post sends body JSON-encoded.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...Option) (*RawEnvelope, error) {
	return c.do(ctx, http.MethodPost, path, opts, withBody(body))
}

// Put sends body JSON-encoded.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...Option) (*RawEnvelope, error) {
	return c.do(ctx, http.MethodPut, path, opts, withBody(body))
}

// Delete sends no body.
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) (*RawEnvelope, error) {
	return c.do(ctx, http.MethodDelete, path, opts, nil)
}

func withBody(body any) func(*resty.Request) {
	return func(req *resty.Request) {
		if body != nil {
			req.SetBody(body)
		}
	}
}

// do runs one request through the hooks. The envelope is handed back by
// afterResponse through the call state.
func (c *Client) do(ctx context.Context, method, path string, opts []Option, configure func(*resty.Request)) (*RawEnvelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	state := &callState{opts: buildOptions(opts)}
	ctx = withCallState(ctx, state)
	if state.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, state.opts.timeout)
		defer cancel()
	}

	req := c.rest.R().SetContext(ctx)
	if len(state.opts.headers) > 0 {
		req.SetHeaders(state.opts.headers)
	}
	if configure != nil {
		configure(req)
	}

	if _, err := req.Execute(method, path); err != nil {
		return nil, err
	}
	if state.envelope == nil {
		return nil, &APIError{Message: MessageRequestFailed, Err: ErrMalformedEnvelope}
	}
	return state.envelope, nil
}

// Get decodes the envelope data into T.
func Get[T any](ctx context.Context, c *Client, path string, params Params, opts ...Option) (*Envelope[T], error) {
	return decoded[T](c.Get(ctx, path, params, opts...))
}

// Post decodes the envelope data into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...Option) (*Envelope[T], error) {
	return decoded[T](c.Post(ctx, path, body, opts...))
}

// Put decodes the envelope data into T.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...Option) (*Envelope[T], error) {
	return decoded[T](c.Put(ctx, path, body, opts...))
}

// Delete decodes the envelope data into T.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...Option) (*Envelope[T], error) {
	return decoded[T](c.Delete(ctx, path, opts...))
}

// Upload decodes the envelope data into T.
func Upload[T any](ctx context.Context, c *Client, path string, file File, opts ...Option) (*Envelope[T], error) {
	return decoded[T](c.Upload(ctx, path, file, opts...))
}

func decoded[T any](raw *RawEnvelope, err error) (*Envelope[T], error) {
	if err != nil {
		return nil, err
	}
	return Decode[T](raw)
}
