package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/model"
	"github.com/radiancefleet/core/internal/store/memstore"
)

func waitForEntries(t *testing.T, ms *memstore.Store, n int) []model.AuditLog {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		entries := ms.AuditLogs()
		if len(entries) >= n {
			return entries
		}
		time.Sleep(time.Millisecond)
	}
	require.FailNow(t, "timed out waiting for audit entries")
	return nil
}

func TestLogPersistsEntryAsynchronously(t *testing.T) {
	ms := memstore.New()
	l := New(ms)

	l.Log("system:gapdetector", "gap_created", "ais_gap_event", "g1", map[string]any{"vessel_id": "v1"})

	entries := waitForEntries(t, ms, 1)
	assert.Equal(t, "system:gapdetector", entries[0].Actor)
	assert.Equal(t, "gap_created", entries[0].Action)
	assert.Equal(t, "g1", entries[0].EntityID)
}

func TestLogMergeRecordsRewrittenTablesAndRowTotal(t *testing.T) {
	ms := memstore.New()
	l := New(ms)

	l.LogMerge("analyst:1", "survivor", "absorbed", []model.MergeTableRewrite{
		{Table: "ais_points", RowCount: 12},
		{Table: "loitering_events", RowCount: 0},
	})

	entries := waitForEntries(t, ms, 1)
	assert.Equal(t, "vessel_merge", entries[0].Action)
	assert.Equal(t, "absorbed", entries[0].Detail["absorbed_vessel_id"])
	assert.Equal(t, 12, entries[0].Detail["rewritten_rows"])
}

func TestLogOnNilLoggerIsANoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Log("system:x", "y", "z", "1", nil)
	})
}
