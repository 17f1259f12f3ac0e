package observability

import (
	"testing"
	"time"
)

func TestSnapshotAggregatesCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/ticket", "POST", 201, 40*time.Millisecond)
	m.RecordRequest("/ticket", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/health/live", "GET", 200, time.Millisecond)
	m.RecordError("/ticket", "POST", "VALIDATION_FAILED")
	m.RecordNotification("published")
	m.RecordNotification("published")

	snap := m.Snapshot()
	if len(snap.Requests) != 2 {
		t.Fatalf("expected 2 request keys, got %d", len(snap.Requests))
	}
	if snap.Requests[1].Key != "/ticket|POST|201" || snap.Requests[1].Count != 2 || snap.Requests[1].TotalMillis != 50 {
		t.Fatalf("unexpected ticket stat %+v", snap.Requests[1])
	}
	if snap.Errors["/ticket|POST|VALIDATION_FAILED"] != 1 {
		t.Fatalf("errors = %v", snap.Errors)
	}
	if snap.Notifications["published"] != 2 {
		t.Fatalf("notifications = %v", snap.Notifications)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordNotification("dropped")
	if snap := m.Snapshot(); len(snap.Requests) != 0 || snap.Errors == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
