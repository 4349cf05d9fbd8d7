package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"vigil-worker-go/internal/models"
)

const (
	// DefaultDetectionRingSize bounds the recent-detection history
	DefaultDetectionRingSize = 3
	// DefaultAlertRingSize bounds the recent-alert history
	DefaultAlertRingSize = 5
)

// ErrStateCorruption indicates a ring/counter invariant violation. It should
// never occur while mutations go through this type's own methods.
var ErrStateCorruption = errors.New("session state corruption detected")

// State is the mutable core of the surveillance session: running flag, start
// time, bounded detection/alert history and cumulative counters. One mutex
// guards everything; external inference must never run while it is held.
type State struct {
	mu sync.Mutex

	running    bool
	startTime  time.Time
	detections []models.Detection
	alerts     []models.Alert
	stats      models.SessionStats

	detectionCap int
	alertCap     int

	nowFn func() time.Time
}

// NewState creates a stopped session with empty history.
func NewState(detectionCap, alertCap int) *State {
	if detectionCap <= 0 {
		detectionCap = DefaultDetectionRingSize
	}
	if alertCap <= 0 {
		alertCap = DefaultAlertRingSize
	}
	return &State{
		detections:   make([]models.Detection, 0, detectionCap),
		alerts:       make([]models.Alert, 0, alertCap),
		detectionCap: detectionCap,
		alertCap:     alertCap,
		nowFn:        time.Now,
	}
}

// Start transitions Stopped -> Running. Idempotent: restarting an already
// running session keeps the original start time.
func (s *State) Start() (startedAt time.Time, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.startTime, false
	}
	s.running = true
	s.startTime = s.nowFn()
	return s.startTime, true
}

// Stop transitions Running -> Stopped. Idempotent; history is kept.
func (s *State) Stop() (startedAt, endedAt time.Time, stopped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return s.startTime, time.Time{}, false
	}
	s.running = false
	return s.startTime, s.nowFn(), true
}

// Reset returns to Stopped with empty rings and zeroed counters, from either
// state.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.startTime = time.Time{}
	s.detections = s.detections[:0]
	s.alerts = s.alerts[:0]
	s.stats = models.SessionStats{}
}

// Running reports whether the session is currently running.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RecordDetections appends detections to the ring (most-recent-last, oldest
// evicted beyond capacity) and bumps the counters. Callable in either state.
func (s *State) RecordDetections(detections []models.Detection) error {
	if len(detections) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.detections = append(s.detections, detections...)
	if excess := len(s.detections) - s.detectionCap; excess > 0 {
		s.detections = append(s.detections[:0], s.detections[excess:]...)
	}

	for _, det := range detections {
		s.stats.TotalDetections++
		if det.Status == models.StatusSuspicious {
			s.stats.SuspiciousCount++
		} else {
			s.stats.NormalCount++
		}
	}

	return s.checkInvariants()
}

// RecordAlert prepends the alert (newest first), evicting the oldest beyond
// capacity.
func (s *State) RecordAlert(alert models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append([]models.Alert{alert}, s.alerts...)
	if len(s.alerts) > s.alertCap {
		s.alerts = s.alerts[:s.alertCap]
	}

	return s.checkInvariants()
}

// CurrentActivity derives the session-level activity status: idle when
// stopped, otherwise the status of the most recent detection, or normal when
// no detections exist yet.
func (s *State) CurrentActivity() models.ActivityStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentActivityLocked()
}

func (s *State) currentActivityLocked() models.ActivityStatus {
	if !s.running {
		return models.ActivityIdle
	}
	if len(s.detections) == 0 {
		return models.ActivityNormal
	}
	if s.detections[len(s.detections)-1].Status == models.StatusSuspicious {
		return models.ActivitySuspicious
	}
	return models.ActivityNormal
}

// Snapshot returns an immutable copy of the state with uptime recomputed and
// the activity status derived under the same lock hold, so the status always
// agrees with the detection ring it ships with. Never mutates counters or
// rings.
func (s *State) Snapshot() models.StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	if s.running && !s.startTime.IsZero() {
		stats.Uptime = int64(s.nowFn().Sub(s.startTime).Seconds())
	} else {
		stats.Uptime = 0
	}

	detections := make([]models.Detection, len(s.detections))
	copy(detections, s.detections)
	alerts := make([]models.Alert, len(s.alerts))
	copy(alerts, s.alerts)

	return models.StateSnapshot{
		Running:        s.running,
		ActivityStatus: s.currentActivityLocked(),
		Detections:     detections,
		Alerts:         alerts,
		Stats:          stats,
	}
}

// checkInvariants must be called with the lock held, after every mutation.
func (s *State) checkInvariants() error {
	if len(s.detections) > s.detectionCap {
		return fmt.Errorf("%w: detection ring size %d exceeds capacity %d",
			ErrStateCorruption, len(s.detections), s.detectionCap)
	}
	if len(s.alerts) > s.alertCap {
		return fmt.Errorf("%w: alert ring size %d exceeds capacity %d",
			ErrStateCorruption, len(s.alerts), s.alertCap)
	}
	if s.stats.TotalDetections != s.stats.NormalCount+s.stats.SuspiciousCount {
		return fmt.Errorf("%w: totalDetections=%d but normal=%d suspicious=%d",
			ErrStateCorruption, s.stats.TotalDetections, s.stats.NormalCount, s.stats.SuspiciousCount)
	}
	if s.stats.TotalDetections < 0 {
		return fmt.Errorf("%w: negative totalDetections %d", ErrStateCorruption, s.stats.TotalDetections)
	}
	return nil
}
