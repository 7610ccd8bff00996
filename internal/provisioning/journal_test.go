package provisioning

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordsAndForwards(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	j := NewJournal("switches", true, rec)

	_, err := uuid.Parse(j.RunID())
	require.NoError(t, err)
	assert.Equal(t, "switches", j.Operation())

	scoped := j.WithFields(map[string]string{"site": "Site-12"})
	LogResourceCreated(scoped, "switches", "device", "sw12-1", "")
	LogSkipped(j, "switches", "ABC1", "duplicate serial")
	j.Printf("free-form %s", "message")

	events := j.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Site-12", events[0].Fields["site"])
	assert.Equal(t, LevelSuccess, events[0].Level)
	assert.Equal(t, LevelWarning, events[1].Level)
	assert.False(t, events[0].Timestamp.IsZero())

	require.Len(t, rec.events, 2)
	assert.Equal(t, j.RunID(), rec.events[0].Fields["run"])
	assert.Equal(t, []string{"free-form message"}, rec.messages)
}

func TestJournal_NilObserver(t *testing.T) {
	t.Parallel()
	j := NewJournal("site", false, nil)
	LogInfo(j, "site", "hello")
	j.Printf("ignored")
	assert.Len(t, j.Events(), 1)
}

func TestJournal_Report(t *testing.T) {
	t.Parallel()
	j := NewJournal("promote", false, nil)
	LogInfo(j, "promote", "starting")
	LogFailure(j, "promote", "sw12-1", assert.AnError)
	LogFailure(j, "promote", "sw12-2", assert.AnError)

	assert.Equal(t, 2, j.Count(LevelFailure))
	assert.Equal(t, 0, j.Count(LevelSuccess))

	r := j.Report()
	assert.Equal(t, j.RunID(), r.RunID)
	assert.False(t, r.Commit)
	assert.Equal(t, map[Level]int{LevelInfo: 1, LevelSuccess: 0, LevelWarning: 0, LevelFailure: 2}, r.Summary)
	assert.False(t, r.FinishedAt.Before(r.StartedAt))

	data, err := json.Marshal(j)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "promote", decoded["operation"])
	assert.Len(t, decoded["events"], 3)
}

func TestJournal_Render(t *testing.T) {
	t.Parallel()
	j := NewJournal("switches", true, nil)
	LogResourceCreated(j, "switches", "device", "sw12-1", "https://netbox.example.com/dcim/devices/1/")
	LogSkipped(j, "switches", "ABC1", "duplicate serial")

	out := j.Render(false)
	assert.Contains(t, out, "switches run "+j.RunID())
	assert.Contains(t, out, "(committed)")
	assert.Contains(t, out, "RESOURCE")
	assert.Contains(t, out, "sw12-1")
	assert.Contains(t, out, "https://netbox.example.com/dcim/devices/1/")
	assert.Contains(t, out, "1 success, 1 warning, 0 failure")

	dry := NewJournal("site", false, nil)
	assert.Contains(t, dry.Render(false), "(dry run, rolled back)")
}
