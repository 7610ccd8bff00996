package provisioning

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Logger is the minimal logging interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         `json:"type"`
	Level     Level             `json:"level"`
	Phase     string            `json:"phase,omitempty"`
	Message   string            `json:"message"`
	Resource  string            `json:"resource,omitempty"`
	Link      string            `json:"link,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase aborted.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreated indicates a record was created.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates an existing record was reused.
	EventResourceExists EventType = "resource.exists"
	// EventResourceUpdated indicates a record was changed.
	EventResourceUpdated EventType = "resource.updated"
	// EventResourceSkipped indicates an item was deliberately not processed.
	EventResourceSkipped EventType = "resource.skipped"
	// EventResourceFailed indicates processing an item failed.
	EventResourceFailed EventType = "resource.failed"

	// EventValidationPassed indicates a device passed validation.
	EventValidationPassed EventType = "validation.passed"
	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation failure.
	EventValidationError EventType = "validation.error"

	// EventPipelineTriggered indicates the CI pipeline accepted a trigger.
	EventPipelineTriggered EventType = "pipeline.triggered"
	// EventPipelineFailed indicates the pipeline trigger did not succeed.
	EventPipelineFailed EventType = "pipeline.failed"

	// EventInfo is a plain informational message.
	EventInfo EventType = "info"
)

// Level classifies events the way operators read them.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelFailure Level = "failure"
)

// Level returns the default level for events of this type.
func (t EventType) Level() Level {
	switch t {
	case EventPhaseCompleted, EventResourceCreated, EventResourceUpdated,
		EventValidationPassed, EventPipelineTriggered:
		return LevelSuccess
	case EventResourceSkipped, EventValidationWarning:
		return LevelWarning
	case EventPhaseFailed, EventResourceFailed, EventValidationError, EventPipelineFailed:
		return LevelFailure
	default:
		return LevelInfo
	}
}

// normalize fills the level and timestamp and merges context fields
// without overriding fields set on the event itself.
func normalize(event Event, context map[string]string, now time.Time) Event {
	if event.Level == "" {
		event.Level = event.Type.Level()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	if len(context) > 0 {
		merged := make(map[string]string, len(context)+len(event.Fields))
		maps.Copy(merged, context)
		maps.Copy(merged, event.Fields)
		event.Fields = merged
	}
	return event
}

// LogrObserver implements Observer on top of a logr.Logger.
type LogrObserver struct {
	logger logr.Logger
	fields map[string]string
}

// NewLogrObserver creates an observer writing through logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{
		logger: logger,
		fields: make(map[string]string),
	}
}

// NewFuncrLogger returns a logr.Logger printing timestamped key/value lines
// to w. Printf messages are only shown at verbosity 1 and above.
func NewFuncrLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintln(w, prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{
		LogTimestamp:    true,
		TimestampFormat: time.RFC3339,
		Verbosity:       verbosity,
	})
}

// Printf implements Logger. Messages are logged at V(1).
func (o *LogrObserver) Printf(format string, v ...any) {
	o.logger.V(1).Info(fmt.Sprintf(format, v...), keyValues(o.fields)...)
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	event = normalize(event, o.fields, time.Now())

	kv := []any{"type", string(event.Type), "level", string(event.Level)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	if event.Link != "" {
		kv = append(kv, "link", event.Link)
	}
	kv = append(kv, keyValues(event.Fields)...)

	if event.Level == LevelFailure {
		o.logger.Error(nil, event.Message, kv...)
		return
	}
	o.logger.Info(event.Message, kv...)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.fields)+len(fields))
	maps.Copy(merged, o.fields)
	maps.Copy(merged, fields)
	return &LogrObserver{logger: o.logger, fields: merged}
}

// keyValues flattens fields into sorted logr key/value pairs.
func keyValues(fields map[string]string) []any {
	keys := slices.Sorted(maps.Keys(fields))
	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreated logs a successful record creation.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, link string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Link:     link,
		Message:  fmt.Sprintf("%s %s created", resourceType, resourceName),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceExists logs when an existing record is reused.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, link string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Link:     link,
		Message:  fmt.Sprintf("%s %s already exists", resourceType, resourceName),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogResourceUpdated logs a record change.
func LogResourceUpdated(observer Observer, phase, resourceType, resourceName, link, change string) {
	observer.Event(Event{
		Type:     EventResourceUpdated,
		Phase:    phase,
		Resource: resourceName,
		Link:     link,
		Message:  fmt.Sprintf("%s %s: %s", resourceType, resourceName, change),
		Fields:   map[string]string{"type": resourceType},
	})
}

// LogSkipped logs an item that was deliberately not processed.
func LogSkipped(observer Observer, phase, resource, reason string) {
	observer.Event(Event{
		Type:     EventResourceSkipped,
		Phase:    phase,
		Resource: resource,
		Message:  reason,
	})
}

// LogFailure logs a per-item failure; the run continues.
func LogFailure(observer Observer, phase, resource string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resource,
		Message:  err.Error(),
	})
}

// LogWarning logs a warning that is not tied to a single record.
func LogWarning(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:    EventValidationWarning,
		Phase:   phase,
		Message: message,
	})
}

// LogInfo logs an informational message.
func LogInfo(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:    EventInfo,
		Phase:   phase,
		Message: message,
	})
}
