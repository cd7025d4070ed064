package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// recordingNavigator records every navigation.
type recordingNavigator struct {
	navs []Navigation
	err  error
}

func (r *recordingNavigator) Navigate(_ context.Context, nav Navigation) error {
	r.navs = append(r.navs, nav)
	return r.err
}

func TestDownloadBuildsURLAndNavigatesOnce(t *testing.T) {
	nav := &recordingNavigator{}
	c := New(Config{
		BaseURL:   "https://api.example.com",
		Tokens:    NewMemoryTokenStore("abc123"),
		Navigator: nav,
	})

	if err := c.Download(context.Background(), "/files/export", Params{"fileId": "123"}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(nav.navs) != 1 {
		t.Fatalf("expected a single navigation, got %d", len(nav.navs))
	}
	got := nav.navs[0]
	if !strings.HasSuffix(got.URL, "?fileId=123") {
		t.Fatalf("URL = %q", got.URL)
	}
	if got.URL != "https://api.example.com/files/export?fileId=123" {
		t.Fatalf("URL = %q", got.URL)
	}
	if got.Target != "_blank" || got.Rel != "noopener noreferrer" {
		t.Fatalf("unexpected target/rel %+v", got)
	}
	if !got.TokenAvailable {
		t.Fatalf("expected token to be reported available")
	}
}

func TestDownloadWithoutParamsOrToken(t *testing.T) {
	nav := &recordingNavigator{}
	c := New(Config{Tokens: NewMemoryTokenStore("abc123"), Navigator: nav})

	if err := c.Download(context.Background(), "/files/all", nil, WithoutToken()); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got := nav.navs[0]; got.URL != "/files/all" || got.TokenAvailable {
		t.Fatalf("unexpected navigation %+v", got)
	}
}

func TestDownloadErrors(t *testing.T) {
	c := New(Config{})
	if err := c.Download(context.Background(), "/f", nil); !errors.Is(err, ErrNoNavigator) {
		t.Fatalf("expected ErrNoNavigator, got %v", err)
	}

	navErr := errors.New("blocked")
	c = New(Config{Navigator: &recordingNavigator{err: navErr}})
	if err := c.Download(context.Background(), "/f", nil); !errors.Is(err, navErr) {
		t.Fatalf("expected navigator error, got %v", err)
	}
}

func TestFileNavigatorSavesBodyWithoutAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Query().Get("fileId") != "123" {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
		_, _ = w.Write([]byte("a,b\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(Config{
		BaseURL:   srv.URL,
		Tokens:    NewMemoryTokenStore("abc123"),
		Navigator: NewFileNavigator(dir, 0),
	})

	if err := c.Download(context.Background(), "/export", Params{"fileId": "123"}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "report.csv"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(raw) != "a,b\n" {
		t.Fatalf("saved content %q", raw)
	}
	if auth != "" {
		t.Fatalf("download navigation must not carry Authorization, got %q", auth)
	}

	if err := c.Download(context.Background(), "/export", Params{"fileId": "999"}); err == nil {
		t.Fatalf("expected error for failed download")
	}
}

func TestFileNameFor(t *testing.T) {
	cases := []struct {
		disposition string
		url         string
		want        string
	}{
		{`attachment; filename="a.txt"`, "https://x/y/z.bin", "a.txt"},
		{`attachment; filename="../../etc/passwd"`, "https://x/y", "passwd"},
		{"", "https://x/files/z.bin?fileId=1", "z.bin"},
		{"", "https://x/", "download"},
	}
	for _, tc := range cases {
		if got := fileNameFor(tc.disposition, tc.url); got != tc.want {
			t.Fatalf("fileNameFor(%q, %q) = %q, want %q", tc.disposition, tc.url, got, tc.want)
		}
	}
}
