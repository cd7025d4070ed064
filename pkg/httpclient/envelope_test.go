package httpclient

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeEnvelopeRequiresCode(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"not json":   "<html></html>",
		"no code":    `{"data": {"id": 1}, "message": "ok"}`,
		"null code":  `{"code": null}`,
		"wrong type": `{"code": "200"}`,
	}
	for name, body := range cases {
		if _, err := decodeEnvelope([]byte(body)); !errors.Is(err, ErrMalformedEnvelope) {
			t.Fatalf("%s: expected ErrMalformedEnvelope, got %v", name, err)
		}
	}

	env, err := decodeEnvelope([]byte(`{"code": 0, "data": [1,2], "message": "m", "success": true}`))
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if !env.OK() || env.Message != "m" || !env.Success || string(env.Data) != "[1,2]" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestEnvelopeOK(t *testing.T) {
	for code, want := range map[int]bool{200: true, 0: true, 201: false, 401: false, -1: false} {
		env := &RawEnvelope{Code: code}
		if env.OK() != want {
			t.Fatalf("code %d: OK() = %v", code, env.OK())
		}
	}
	var nilEnv *RawEnvelope
	if nilEnv.OK() {
		t.Fatalf("nil envelope must not be OK")
	}
}

func TestDecodeTypedData(t *testing.T) {
	raw := &RawEnvelope{Code: 200, Data: json.RawMessage(`{"n": 3}`), Message: "ok"}
	env, err := Decode[struct {
		N int `json:"n"`
	}](raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Data.N != 3 || env.Message != "ok" {
		t.Fatalf("unexpected %+v", env)
	}

	empty, err := Decode[[]string](&RawEnvelope{Code: 0, Data: json.RawMessage("null")})
	if err != nil || empty.Data != nil {
		t.Fatalf("expected zero data, got %+v err=%v", empty, err)
	}

	if _, err := Decode[int](&RawEnvelope{Data: json.RawMessage(`"x"`)}); err == nil {
		t.Fatalf("expected decode error for mismatched data")
	}
}
