package httpclient

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Navigation describes a download handed to a Navigator.
type Navigation struct {
	URL    string
	Target string
	Rel    string
	// TokenAvailable reports whether a token was stored and not opted out of.
	// The token itself is not part of the navigation.
	TokenAvailable bool
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(ctx context.Context, nav Navigation) error

func (f NavigatorFunc) Navigate(ctx context.Context, nav Navigation) error {
	return f(ctx, nav)
}

// Download builds baseURL+path+query and triggers a single navigation.
// It bypasses the request hooks: no Authorization header, no envelope.
func (c *Client) Download(ctx context.Context, urlPath string, params Params, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.navigator == nil {
		return ErrNoNavigator
	}
	o := buildOptions(opts)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	nav := Navigation{
		URL:            c.baseURL + urlPath + params.QueryString(),
		Target:         "_blank",
		Rel:            "noopener noreferrer",
		TokenAvailable: token != "" && !o.withoutToken,
	}
	c.log.DebugObj("download navigation", "download_meta", map[string]any{
		"url":             nav.URL,
		"token_available": nav.TokenAvailable,
	})
	return c.navigator.Navigate(ctx, nav)
}

// FileNavigator saves navigations into Dir with a plain resty client.
type FileNavigator struct {
	Dir    string
	client *resty.Client
}

// NewFileNavigator returns a navigator writing into dir. The directory is
// created on first use.
func NewFileNavigator(dir string, timeout time.Duration) *FileNavigator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FileNavigator{Dir: dir, client: newRestyBaseClient(timeout)}
}

// Navigate fetches nav.URL and writes the body to Dir. The file name comes
// from Content-Disposition, then the URL path, then "download".
func (f *FileNavigator) Navigate(ctx context.Context, nav Navigation) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	resp, err := f.client.R().SetContext(ctx).Get(nav.URL)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("download response status %d: %s", resp.StatusCode(), readBodySnippet(resp.Body()))
	}

	name := fileNameFor(resp.Header().Get("Content-Disposition"), nav.URL)
	dst := filepath.Join(f.Dir, name)
	if err := os.WriteFile(dst, resp.Body(), 0o644); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}

func fileNameFor(disposition, rawURL string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := filepath.Base(strings.TrimSpace(params["filename"])); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "download"
}
