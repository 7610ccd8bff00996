package testing

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/imamik/switchyard/internal/provisioning"
)

// MockObserver is a provisioning.Observer that records everything it gets.
type MockObserver struct {
	mu       sync.Mutex
	Events   []provisioning.Event
	Messages []string
	fields   map[string]string
}

// NewMockObserver creates an empty MockObserver.
func NewMockObserver() *MockObserver {
	return &MockObserver{fields: map[string]string{}}
}

// Printf implements provisioning.Logger.
func (m *MockObserver) Printf(format string, v ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, fmt.Sprintf(format, v...))
}

// Event implements provisioning.Observer.
func (m *MockObserver) Event(event provisioning.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// WithFields implements provisioning.Observer. The child shares the
// recorded events with its parent.
func (m *MockObserver) WithFields(fields map[string]string) provisioning.Observer {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged := maps.Clone(m.fields)
	maps.Copy(merged, fields)
	return &childObserver{parent: m, fields: merged}
}

type childObserver struct {
	parent *MockObserver
	fields map[string]string
}

func (c *childObserver) Printf(format string, v ...any) { c.parent.Printf(format, v...) }

func (c *childObserver) Event(event provisioning.Event) { c.parent.Event(event) }

func (c *childObserver) WithFields(fields map[string]string) provisioning.Observer {
	merged := maps.Clone(c.fields)
	maps.Copy(merged, fields)
	return &childObserver{parent: c.parent, fields: merged}
}

// FakeNotifier records pipeline triggers and returns Err.
type FakeNotifier struct {
	mu    sync.Mutex
	Fired []string
	Err   error
}

// Fire implements provisioning.Notifier.
func (f *FakeNotifier) Fire(_ context.Context, variable string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fired = append(f.Fired, variable)
	return f.Err
}

// FakeResolver answers DeviceIP from fixed maps.
type FakeResolver struct {
	mu     sync.Mutex
	IPs    map[string]string
	Errors map[string]error
	Calls  []string
}

// DeviceIP implements addressing.Resolver.
func (f *FakeResolver) DeviceIP(_ context.Context, serial string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, serial)
	if err := f.Errors[serial]; err != nil {
		return "", err
	}
	return f.IPs[serial], nil
}
