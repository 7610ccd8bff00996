package provisioning

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory/store"
)

// recorder is an Observer keeping everything it receives.
type recorder struct {
	mu       sync.Mutex
	events   []Event
	messages []string
	fields   map[string]string
}

func (r *recorder) Printf(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, fmt.Sprintf(format, v...))
}

func (r *recorder) Event(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Fields = mergeFields(r.fields, e.Fields)
	r.events = append(r.events, e)
}

func (r *recorder) WithFields(fields map[string]string) Observer {
	return &scopedRecorder{parent: r, fields: fields}
}

type scopedRecorder struct {
	parent *recorder
	fields map[string]string
}

func (s *scopedRecorder) Printf(format string, v ...any) { s.parent.Printf(format, v...) }

func (s *scopedRecorder) Event(e Event) {
	e.Fields = mergeFields(s.fields, e.Fields)
	s.parent.Event(e)
}

func (s *scopedRecorder) WithFields(fields map[string]string) Observer {
	return &scopedRecorder{parent: s.parent, fields: mergeFields(s.fields, fields)}
}

func mergeFields(a, b map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func newTestContext(t *testing.T, commit bool) *Context {
	t.Helper()
	s, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	cfg := config.Defaults()
	return NewContext(context.Background(), cfg, s, NewJournal("test", commit, &recorder{}), commit)
}
