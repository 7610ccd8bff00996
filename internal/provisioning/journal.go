package provisioning

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
)

// runLog is the state shared by a Journal and every scoped copy of it.
type runLog struct {
	mu        sync.Mutex
	runID     string
	operation string
	commit    bool
	startedAt time.Time
	events    []Event
}

// Journal records the events of one run and forwards them to an inner
// observer. Copies returned by WithFields write to the same log.
type Journal struct {
	log    *runLog
	next   Observer
	fields map[string]string
	now    func() time.Time
}

// NewJournal starts a journal for operation with a fresh run ID. next may be nil.
func NewJournal(operation string, commit bool, next Observer) *Journal {
	j := &Journal{
		log: &runLog{
			runID:     uuid.NewString(),
			operation: operation,
			commit:    commit,
		},
		next:   next,
		fields: map[string]string{},
		now:    time.Now,
	}
	j.log.startedAt = j.now()
	if next != nil {
		j.next = next.WithFields(map[string]string{"run": j.log.runID})
	}
	return j
}

// RunID returns the identifier shared by every event of this run.
func (j *Journal) RunID() string { return j.log.runID }

// Operation returns the operation name the journal was started for.
func (j *Journal) Operation() string { return j.log.operation }

// Printf implements Logger. Free-form messages are forwarded, not recorded.
func (j *Journal) Printf(format string, v ...any) {
	if j.next != nil {
		j.next.Printf(format, v...)
	}
}

// Event implements Observer.
func (j *Journal) Event(event Event) {
	event = normalize(event, j.fields, j.now())

	j.log.mu.Lock()
	j.log.events = append(j.log.events, event)
	j.log.mu.Unlock()

	if j.next != nil {
		j.next.Event(event)
	}
}

// WithFields implements Observer.
func (j *Journal) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(j.fields)+len(fields))
	maps.Copy(merged, j.fields)
	maps.Copy(merged, fields)
	return &Journal{log: j.log, next: j.next, fields: merged, now: j.now}
}

// Events returns a copy of the recorded events in order.
func (j *Journal) Events() []Event {
	j.log.mu.Lock()
	defer j.log.mu.Unlock()
	out := make([]Event, len(j.log.events))
	copy(out, j.log.events)
	return out
}

// Count returns how many events were recorded at level.
func (j *Journal) Count(level Level) int {
	n := 0
	for _, e := range j.Events() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Report is the serialisable form of a journal.
type Report struct {
	RunID      string        `json:"run_id"`
	Operation  string        `json:"operation"`
	Commit     bool          `json:"commit"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Summary    map[Level]int `json:"summary"`
	Events     []Event       `json:"events"`
}

// Report snapshots the journal.
func (j *Journal) Report() Report {
	events := j.Events()
	summary := map[Level]int{LevelInfo: 0, LevelSuccess: 0, LevelWarning: 0, LevelFailure: 0}
	for _, e := range events {
		summary[e.Level]++
	}
	return Report{
		RunID:      j.log.runID,
		Operation:  j.log.operation,
		Commit:     j.log.commit,
		StartedAt:  j.log.startedAt,
		FinishedAt: j.now(),
		Summary:    summary,
		Events:     events,
	}
}

// MarshalJSON encodes the journal as its Report.
func (j *Journal) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Report())
}

var (
	levelStyles = map[Level]lipgloss.Style{
		LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
		LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308")),
		LevelFailure: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	}
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Render formats the journal as a table for terminals. Colour is applied
// only when color is true.
func (j *Journal) Render(color bool) string {
	r := j.Report()
	paint := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	mode := "dry run, rolled back"
	if r.Commit {
		mode = "committed"
	}

	var b strings.Builder
	b.WriteString(paint(titleStyle, fmt.Sprintf("%s run %s", r.Operation, r.RunID)))
	b.WriteString(paint(dimStyle, fmt.Sprintf(" (%s)", mode)))
	b.WriteString("\n")

	rows := make([][]string, 0, len(r.Events))
	for _, e := range r.Events {
		message := e.Message
		if e.Link != "" {
			message += " " + paint(dimStyle, e.Link)
		}
		rows = append(rows, []string{
			e.Timestamp.Format("15:04:05"),
			paint(levelStyles[e.Level], string(e.Level)),
			e.Resource,
			message,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "LEVEL", "RESOURCE", "MESSAGE").
		Rows(rows...)
	b.WriteString(t.String())
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%d success, %d warning, %d failure\n",
		r.Summary[LevelSuccess], r.Summary[LevelWarning], r.Summary[LevelFailure]))
	return b.String()
}
