package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	CodeOK           = 200
	CodeOKAlt        = 0
	CodeUnauthorized = 401
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Envelope is the uniform body every endpoint returns.
type Envelope[T any] struct {
	Code    int    `json:"code" yaml:"code"`
	Data    T      `json:"data" yaml:"data"`
	Message string `json:"message" yaml:"message"`
	Success bool   `json:"success" yaml:"success"`
}

// RawEnvelope is an envelope whose data has not been decoded yet.
type RawEnvelope = Envelope[json.RawMessage]

// OK reports whether the application-level code signals success.
func (e *Envelope[T]) OK() bool {
	return e != nil && (e.Code == CodeOK || e.Code == CodeOKAlt)
}

// wireEnvelope is the unvalidated shape decoded off the wire.
type wireEnvelope struct {
	Code    *int            `json:"code" validate:"required"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

// decodeEnvelope parses and validates a response body.
func decodeEnvelope(body []byte) (*RawEnvelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedEnvelope)
	}

	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := validate.Struct(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	return &RawEnvelope{
		Code:    *w.Code,
		Data:    w.Data,
		Message: w.Message,
		Success: w.Success,
	}, nil
}

// Decode converts a raw envelope into a typed one. Missing or null data
// decodes to the zero value of T.
func Decode[T any](raw *RawEnvelope) (*Envelope[T], error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil envelope", ErrMalformedEnvelope)
	}

	out := &Envelope[T]{
		Code:    raw.Code,
		Message: raw.Message,
		Success: raw.Success,
	}
	data := bytes.TrimSpace(raw.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(data, &out.Data); err != nil {
		return nil, fmt.Errorf("decode envelope data: %w", err)
	}
	return out, nil
}
