package session

import (
	"fmt"
	"testing"
	"time"

	"vigil-worker-go/internal/models"
)

func detection(id int64, status models.DetectionStatus) models.Detection {
	return models.Detection{
		ID:         id,
		X:          10,
		Y:          10,
		Width:      20,
		Height:     30,
		Confidence: 85,
		Label:      "person",
		Status:     status,
	}
}

func TestStartIsIdempotent(t *testing.T) {
	s := NewState(3, 5)

	first, started := s.Start()
	if !started {
		t.Fatal("first Start() should transition to running")
	}
	second, started := s.Start()
	if started {
		t.Error("second Start() should be a no-op")
	}
	if !first.Equal(second) {
		t.Errorf("start time changed on restart: %v -> %v", first, second)
	}
	if !s.Running() {
		t.Error("session should be running")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewState(3, 5)
	s.Start()

	if _, _, stopped := s.Stop(); !stopped {
		t.Fatal("Stop() on a running session should report the transition")
	}
	if _, _, stopped := s.Stop(); stopped {
		t.Error("Stop() on a stopped session should be a no-op")
	}
	if s.Running() {
		t.Error("session should be stopped")
	}
}

func TestStopKeepsHistory(t *testing.T) {
	s := NewState(3, 5)
	s.Start()
	if err := s.RecordDetections([]models.Detection{detection(1, models.StatusNormal)}); err != nil {
		t.Fatalf("RecordDetections() error = %v", err)
	}
	s.Stop()

	snap := s.Snapshot()
	if len(snap.Detections) != 1 {
		t.Errorf("detections after stop = %d, want 1", len(snap.Detections))
	}
	if snap.Stats.TotalDetections != 1 {
		t.Errorf("totalDetections after stop = %d, want 1", snap.Stats.TotalDetections)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewState(3, 5)
	s.Start()
	s.RecordDetections([]models.Detection{
		detection(1, models.StatusNormal),
		detection(2, models.StatusSuspicious),
	})
	s.RecordAlert(models.Alert{ID: 1, Message: "alert"})

	s.Reset()

	if s.Running() {
		t.Error("Reset() should stop the session")
	}
	snap := s.Snapshot()
	if len(snap.Detections) != 0 || len(snap.Alerts) != 0 {
		t.Error("Reset() should clear both rings")
	}
	if snap.Stats != (models.SessionStats{}) {
		t.Errorf("Reset() stats = %+v, want zero", snap.Stats)
	}
}

func TestDetectionRingBounds(t *testing.T) {
	s := NewState(3, 5)

	for i := int64(1); i <= 7; i++ {
		if err := s.RecordDetections([]models.Detection{detection(i, models.StatusNormal)}); err != nil {
			t.Fatalf("RecordDetections(%d) error = %v", i, err)
		}
	}

	snap := s.Snapshot()
	if len(snap.Detections) != 3 {
		t.Fatalf("detection ring length = %d, want 3", len(snap.Detections))
	}
	// Most recent entries, append order preserved
	for i, wantID := range []int64{5, 6, 7} {
		if snap.Detections[i].ID != wantID {
			t.Errorf("detections[%d].ID = %d, want %d", i, snap.Detections[i].ID, wantID)
		}
	}
}

func TestDetectionRingBatchOverflow(t *testing.T) {
	s := NewState(3, 5)

	batch := make([]models.Detection, 5)
	for i := range batch {
		batch[i] = detection(int64(i+1), models.StatusNormal)
	}
	if err := s.RecordDetections(batch); err != nil {
		t.Fatalf("RecordDetections() error = %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Detections) != 3 {
		t.Fatalf("detection ring length = %d, want 3", len(snap.Detections))
	}
	if snap.Detections[0].ID != 3 || snap.Detections[2].ID != 5 {
		t.Errorf("ring should keep the newest batch entries, got IDs %d..%d",
			snap.Detections[0].ID, snap.Detections[2].ID)
	}
	if snap.Stats.TotalDetections != 5 {
		t.Errorf("totalDetections = %d, want 5 (counters see every detection)", snap.Stats.TotalDetections)
	}
}

func TestAlertRingNewestFirst(t *testing.T) {
	s := NewState(3, 5)

	for i := int64(1); i <= 8; i++ {
		if err := s.RecordAlert(models.Alert{ID: i, Message: fmt.Sprintf("alert %d", i)}); err != nil {
			t.Fatalf("RecordAlert(%d) error = %v", i, err)
		}
	}

	snap := s.Snapshot()
	if len(snap.Alerts) != 5 {
		t.Fatalf("alert ring length = %d, want 5", len(snap.Alerts))
	}
	if snap.Alerts[0].ID != 8 {
		t.Errorf("newest alert should sit at index 0, got ID %d", snap.Alerts[0].ID)
	}
	if snap.Alerts[4].ID != 4 {
		t.Errorf("oldest retained alert ID = %d, want 4", snap.Alerts[4].ID)
	}
}

func TestCounterMonotonicity(t *testing.T) {
	s := NewState(3, 5)

	statuses := []models.DetectionStatus{
		models.StatusNormal, models.StatusSuspicious, models.StatusNormal,
		models.StatusSuspicious, models.StatusSuspicious, models.StatusNormal,
	}

	prevTotal := 0
	for i, status := range statuses {
		// Interleave session transitions; counters must be unaffected
		switch i % 3 {
		case 0:
			s.Start()
		case 1:
			s.Stop()
		}

		if err := s.RecordDetections([]models.Detection{detection(int64(i), status)}); err != nil {
			t.Fatalf("RecordDetections() error = %v", err)
		}

		snap := s.Snapshot()
		if snap.Stats.TotalDetections != snap.Stats.NormalCount+snap.Stats.SuspiciousCount {
			t.Fatalf("after %d records: total=%d normal=%d suspicious=%d",
				i+1, snap.Stats.TotalDetections, snap.Stats.NormalCount, snap.Stats.SuspiciousCount)
		}
		if snap.Stats.TotalDetections < prevTotal {
			t.Fatalf("totalDetections decreased: %d -> %d", prevTotal, snap.Stats.TotalDetections)
		}
		prevTotal = snap.Stats.TotalDetections
	}
}

func TestUptime(t *testing.T) {
	s := NewState(3, 5)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.nowFn = func() time.Time { return current }

	snap := s.Snapshot()
	if snap.Stats.Uptime != 0 {
		t.Errorf("uptime while stopped = %d, want 0", snap.Stats.Uptime)
	}

	s.Start()
	current = base.Add(42 * time.Second)
	snap = s.Snapshot()
	if snap.Stats.Uptime != 42 {
		t.Errorf("uptime = %d, want 42", snap.Stats.Uptime)
	}

	s.Stop()
	snap = s.Snapshot()
	if snap.Stats.Uptime != 0 {
		t.Errorf("uptime after stop = %d, want 0", snap.Stats.Uptime)
	}
}

func TestCurrentActivity(t *testing.T) {
	s := NewState(3, 5)

	if got := s.CurrentActivity(); got != models.ActivityIdle {
		t.Errorf("stopped activity = %q, want idle", got)
	}

	s.Start()
	if got := s.CurrentActivity(); got != models.ActivityNormal {
		t.Errorf("running with no detections = %q, want normal", got)
	}

	s.RecordDetections([]models.Detection{detection(1, models.StatusSuspicious)})
	if got := s.CurrentActivity(); got != models.ActivitySuspicious {
		t.Errorf("after suspicious detection = %q, want suspicious", got)
	}

	s.RecordDetections([]models.Detection{detection(2, models.StatusNormal)})
	if got := s.CurrentActivity(); got != models.ActivityNormal {
		t.Errorf("after normal detection = %q, want normal", got)
	}
}

func TestSnapshotActivityMatchesOwnRing(t *testing.T) {
	s := NewState(3, 5)

	// The status in a snapshot must always agree with the detection ring
	// that same snapshot carries, under any interleaving of mutations
	assertConsistent := func(snap models.StateSnapshot) {
		t.Helper()
		want := models.ActivityIdle
		if snap.Running {
			want = models.ActivityNormal
			if n := len(snap.Detections); n > 0 && snap.Detections[n-1].Status == models.StatusSuspicious {
				want = models.ActivitySuspicious
			}
		}
		if snap.ActivityStatus != want {
			t.Errorf("snapshot activity = %q, but its own ring implies %q", snap.ActivityStatus, want)
		}
	}

	assertConsistent(s.Snapshot())

	s.Start()
	assertConsistent(s.Snapshot())

	s.RecordDetections([]models.Detection{detection(1, models.StatusSuspicious)})
	snap := s.Snapshot()
	assertConsistent(snap)
	if snap.ActivityStatus != models.ActivitySuspicious {
		t.Errorf("activity = %q after suspicious detection, want suspicious", snap.ActivityStatus)
	}

	s.RecordDetections([]models.Detection{detection(2, models.StatusNormal)})
	assertConsistent(s.Snapshot())

	s.Stop()
	snap = s.Snapshot()
	assertConsistent(snap)
	if snap.ActivityStatus != models.ActivityIdle {
		t.Errorf("activity = %q after stop, want idle", snap.ActivityStatus)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewState(3, 5)
	s.RecordDetections([]models.Detection{detection(1, models.StatusNormal)})

	snap := s.Snapshot()
	snap.Detections[0].ID = 999

	again := s.Snapshot()
	if again.Detections[0].ID != 1 {
		t.Error("mutating a snapshot must not affect internal state")
	}
}
