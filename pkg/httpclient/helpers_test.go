package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
)

type logEntry struct {
	level string
	msg   string
	key   string
	obj   interface{}
}

// recordingLogger captures log calls.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) record(level, msg, key string, obj interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, msg: msg, key: key, obj: obj})
}

func (r *recordingLogger) InfoObj(msg, key string, obj interface{})  { r.record("info", msg, key, obj) }
func (r *recordingLogger) DebugObj(msg, key string, obj interface{}) { r.record("debug", msg, key, obj) }
func (r *recordingLogger) WarnObj(msg, key string, obj interface{})  { r.record("warn", msg, key, obj) }
func (r *recordingLogger) ErrorObj(msg, key string, obj interface{}) { r.record("error", msg, key, obj) }

func (r *recordingLogger) errors() []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logEntry
	for _, e := range r.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

// failingTokenStore returns err from every call.
type failingTokenStore struct {
	err error
}

func (f failingTokenStore) Token(context.Context) (string, error) { return "", f.err }
func (f failingTokenStore) ClearToken(context.Context) error      { return f.err }

// recordingListener collects auth-expired events.
type recordingListener struct {
	mu     sync.Mutex
	events []AuthExpiredEvent
	err    error
}

func (l *recordingListener) OnAuthExpired(_ context.Context, evt AuthExpiredEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
	return l.err
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, env map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		t.Errorf("encode envelope: %v", err)
	}
}

func storedToken(t *testing.T, store *MemoryTokenStore) string {
	t.Helper()
	token, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	return token
}
