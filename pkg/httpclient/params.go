package httpclient

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Params are query parameters. Values are formatted with fmt.Sprint.
type Params map[string]any

// strings flattens params for resty's query setter.
func (p Params) strings() map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// QueryString renders "?k=v&..." with keys sorted and values escaped the way
// encodeURIComponent does. Keys are emitted as given. Empty params render "".
func (p Params) QueryString() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+encodeURIComponent(fmt.Sprint(p[k])))
	}
	return "?" + strings.Join(parts, "&")
}

var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
	"%7E", "~",
)

func encodeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}
