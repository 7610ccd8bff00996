package provisioning

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventType_Level(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eventType EventType
		want      Level
	}{
		{EventResourceCreated, LevelSuccess},
		{EventResourceUpdated, LevelSuccess},
		{EventValidationPassed, LevelSuccess},
		{EventPipelineTriggered, LevelSuccess},
		{EventResourceExists, LevelInfo},
		{EventInfo, LevelInfo},
		{EventPhaseStarted, LevelInfo},
		{EventResourceSkipped, LevelWarning},
		{EventValidationWarning, LevelWarning},
		{EventResourceFailed, LevelFailure},
		{EventPhaseFailed, LevelFailure},
		{EventPipelineFailed, LevelFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.eventType.Level(), string(tt.eventType))
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e := normalize(Event{Type: EventResourceSkipped, Fields: map[string]string{"run": "event"}},
		map[string]string{"run": "context", "site": "Site-12"}, now)
	assert.Equal(t, LevelWarning, e.Level)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, map[string]string{"run": "event", "site": "Site-12"}, e.Fields)

	explicit := normalize(Event{Type: EventInfo, Level: LevelFailure, Timestamp: now.Add(time.Hour)}, nil, now)
	assert.Equal(t, LevelFailure, explicit.Level)
	assert.Equal(t, now.Add(time.Hour), explicit.Timestamp)
	assert.Nil(t, explicit.Fields)
}

func TestLogrObserver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	obs := NewLogrObserver(NewFuncrLogger(&buf, 0)).WithFields(map[string]string{"run": "abc"})

	obs.Printf("hidden at verbosity %d", 0)
	LogResourceCreated(obs, "switches", "device", "sw12-1", "https://netbox/dcim/devices/1/")
	LogFailure(obs, "switches", "FOC1", errors.New("connection reset"))

	out := buf.String()
	assert.NotContains(t, out, "hidden at verbosity")
	assert.Contains(t, out, "device sw12-1 created")
	assert.Contains(t, out, `"resource"="sw12-1"`)
	assert.Contains(t, out, `"run"="abc"`)
	assert.Contains(t, out, "connection reset")
	assert.Contains(t, out, `"level"="failure"`)
}

func TestLogrObserver_Verbose(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	obs := NewLogrObserver(NewFuncrLogger(&buf, 1))
	obs.Printf("shown at verbosity %d", 1)
	assert.Contains(t, buf.String(), "shown at verbosity 1")
}
