package metrics

import (
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpExtract, 10*time.Millisecond)
	c.RecordTiming(OpExtract, 30*time.Millisecond)
	c.RecordTiming(OpMatch, 1*time.Millisecond)

	snap := c.Snapshot()
	if snap.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %f", snap.UptimeSeconds)
	}

	ex, ok := snap.Operations[OpExtract]
	if !ok {
		t.Fatal("no extract stats")
	}
	if ex.Count != 2 {
		t.Errorf("Count = %d, want 2", ex.Count)
	}
	if ex.TotalTimeMs != 40 {
		t.Errorf("TotalTimeMs = %d, want 40", ex.TotalTimeMs)
	}
	if ex.MinTimeMs != 10 || ex.MaxTimeMs != 30 {
		t.Errorf("Min/Max = %d/%d, want 10/30", ex.MinTimeMs, ex.MaxTimeMs)
	}
	if ex.AvgTimeMs != 20 {
		t.Errorf("AvgTimeMs = %f, want 20", ex.AvgTimeMs)
	}

	if _, ok := snap.Operations[OpGenerate]; ok {
		t.Error("unrecorded operation present in snapshot")
	}
}

func TestSnapshotIsolated(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpRun, time.Second)

	snap := c.Snapshot()
	snap.Operations[OpRun] = OperationSnapshot{}

	if got := c.Snapshot().Operations[OpRun]; got.Count != 1 {
		t.Errorf("Count = %d, snapshot mutation leaked into collector", got.Count)
	}
}
