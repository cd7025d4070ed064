package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xppcnn/apiclient/internal/config"
	"github.com/xppcnn/apiclient/internal/logger"
	"github.com/xppcnn/apiclient/internal/storage"
	"github.com/xppcnn/apiclient/pkg/httpclient"
)

// Session represents one CLI runtime. It owns the token store and the
// request client built on top of it.
type Session struct {
	cfg    *config.Config
	client *httpclient.Client
	store  storage.Store
	log    logger.Logger
	out    io.Writer
}

// Option customizes a Session.
type Option func(*Session)

// WithOutput sets where user-facing notices are written (default stderr).
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.out = w
		}
	}
}

// NewSession builds a session from config.
func NewSession(cfg *config.Config, log logger.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	store, err := storage.NewStore(cfg.TokenStoreType, cfg.TokenStorePath, storage.Options{
		TokenTTL: cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init token store: %w", err)
	}
	log.InfoObj("token store initialized", "storage_config", map[string]any{
		"type":              cfg.TokenStoreType,
		"path":              cfg.TokenStorePath,
		"token_ttl_seconds": int(cfg.TokenTTL.Seconds()),
	})

	s := &Session{
		cfg:   cfg,
		store: store,
		log:   log,
		out:   os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.client = httpclient.New(httpclient.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		Tokens:    store,
		Navigator: httpclient.NewFileNavigator(cfg.DownloadDir, cfg.RequestTimeout),
		LoginPath: cfg.LoginPath,
		Logger:    log,
	})
	s.client.OnAuthExpired(httpclient.AuthListenerFunc(s.onAuthExpired))

	log.InfoObj("client initialized", "client_config", map[string]any{
		"base_url":     cfg.APIBaseURL,
		"timeout":      cfg.RequestTimeout.String(),
		"login_path":   cfg.LoginPath,
		"download_dir": cfg.DownloadDir,
	})
	return s, nil
}

// Client returns the configured request client.
func (s *Session) Client() *httpclient.Client { return s.client }

// Store returns the token store.
func (s *Session) Store() storage.Store { return s.store }

// Close releases the token store, logging any errors encountered.
func (s *Session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		s.log.ErrorObj("storage close failed", "error", err)
		return err
	}
	return nil
}

// onAuthExpired tells the user to sign in again. The client has already
// cleared the stored token.
func (s *Session) onAuthExpired(_ context.Context, evt httpclient.AuthExpiredEvent) error {
	s.log.WarnObj("authentication expired", "auth_event", evt)
	_, err := fmt.Fprintf(s.out, "session expired (%s %d): sign in again at %s\n", evt.Source, evt.Code, evt.RedirectTo)
	return err
}
