package httpclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestUploadSendsMultipartFileField(t *testing.T) {
	var (
		ctype    string
		filename string
		content  string
		auth     string
	)
	c, _, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ctype = r.Header.Get("Content-Type")
		auth = r.Header.Get("Authorization")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		raw, _ := io.ReadAll(f)
		filename = hdr.Filename
		content = string(raw)
		writeEnvelope(t, w, map[string]any{"code": 200, "data": map[string]string{"url": "/files/1"}})
	}, "abc123")

	env, err := Upload[map[string]string](context.Background(), c, "/upload", File{
		Name:    "report.csv",
		Content: strings.NewReader("a,b\n1,2\n"),
	}, WithHeader("Content-Type", "text/plain"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if env.Data["url"] != "/files/1" {
		t.Fatalf("unexpected data %+v", env.Data)
	}
	if !strings.HasPrefix(ctype, "multipart/form-data") {
		t.Fatalf("Content-Type = %q", ctype)
	}
	if filename != "report.csv" || content != "a,b\n1,2\n" {
		t.Fatalf("unexpected file %q %q", filename, content)
	}
	if auth != "Bearer abc123" {
		t.Fatalf("upload should carry the token, got %q", auth)
	}
}

func TestUploadRequiresContent(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:0"})
	if _, err := c.Upload(context.Background(), "/upload", File{Name: "x"}); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
