package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const uploadField = "file"

// File is a single upload payload.
type File struct {
	Name    string
	Content io.Reader
}

// Upload posts file as the "file" field of a multipart body. The multipart
// content type wins over any Content-Type passed in opts.
func (c *Client) Upload(ctx context.Context, path string, file File, opts ...Option) (*RawEnvelope, error) {
	if file.Content == nil {
		return nil, errors.New("upload file has no content")
	}
	name := file.Name
	if name == "" {
		name = uploadField
	}

	return c.do(ctx, http.MethodPost, path, opts, func(req *resty.Request) {
		req.SetFileReader(uploadField, name, file.Content)
		req.SetHeader(headerContentType, contentTypeMultipart)
	})
}
