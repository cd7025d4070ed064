package logger

import (
	"testing"

	"github.com/xppcnn/apiclient/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestObjHelpersWriteStructuredField(t *testing.T) {
	prev := S
	t.Cleanup(func() { S = prev })

	core, logs := observer.New(zapcore.DebugLevel)
	S = zap.New(core).Sugar()

	Global().ErrorObj("请求地址出错", "request_error", map[string]any{"status": 404})
	Global().DebugObj("request completed", "request_meta", map[string]any{"code": 200})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "请求地址出错" || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	fields := entries[0].ContextMap()
	meta, ok := fields["request_error"].(map[string]any)
	if !ok || meta["status"] != 404 {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	prev := S
	t.Cleanup(func() { S = prev })
	S = nil

	InfoObj("ignored", "k", 1)
	NopLogger{}.ErrorObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before init: %v", err)
	}
}

func TestInitSetsGlobalLogger(t *testing.T) {
	prev := S
	t.Cleanup(func() { S = prev })

	sugar, err := Init(&config.Config{LogLevel: "warn"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if sugar == nil || S != sugar {
		t.Fatalf("Init did not set the package logger")
	}
	if sugar.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
}
