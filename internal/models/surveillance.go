package models

import (
	"time"
)

// DetectionStatus classifies a single detection
type DetectionStatus string

const (
	StatusNormal     DetectionStatus = "normal"
	StatusSuspicious DetectionStatus = "suspicious"
)

// ActivityStatus is the session-level activity reported alongside a snapshot
type ActivityStatus string

const (
	ActivityIdle       ActivityStatus = "idle"
	ActivityNormal     ActivityStatus = "normal"
	ActivitySuspicious ActivityStatus = "suspicious"
)

// RawBox is a pixel-space bounding box as returned by a person detector,
// before normalization and filtering.
type RawBox struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"` // 0..1
	Label      string  `json:"label"`
}

// Detection is an accepted person detection in percentage-of-frame
// coordinates. X+Width and Y+Height never exceed 100 after clamping.
type Detection struct {
	ID         int64           `json:"id"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Confidence float64         `json:"confidence"` // 0..100
	Label      string          `json:"label"`
	Status     DetectionStatus `json:"status"`
}

// Alert is generated when the fused activity judgment is suspicious.
// Confidence is floored at the display minimum; RawConfidence keeps the
// unmodified value for audit.
type Alert struct {
	ID            int64     `json:"id"`
	Message       string    `json:"message"`
	Time          string    `json:"time"` // HH:MM:SS, what the polling UI renders
	Timestamp     time.Time `json:"timestamp"`
	Confidence    float64   `json:"confidence"`
	RawConfidence float64   `json:"rawConfidence"`
}

// ClassificationResult is the outcome of classifying one sampled clip.
type ClassificationResult struct {
	Prediction    DetectionStatus    `json:"prediction"`
	Confidence    float64            `json:"confidence"`    // 0..100
	Probabilities map[string]float64 `json:"probabilities"` // label -> 0..100, sums to 100
}

// SessionStats holds the cumulative session counters. Uptime is derived on
// snapshot and never persisted.
type SessionStats struct {
	TotalDetections int   `json:"totalDetections"`
	NormalCount     int   `json:"normalCount"`
	SuspiciousCount int   `json:"suspiciousCount"`
	Uptime          int64 `json:"uptime"` // seconds
}

// StateSnapshot is an immutable copy of the session state served to clients.
type StateSnapshot struct {
	Running        bool           `json:"running"`
	ActivityStatus ActivityStatus `json:"activityStatus"`
	Detections     []Detection    `json:"detections"`
	Alerts         []Alert        `json:"alerts"`
	Stats          SessionStats   `json:"stats"`
}

// Recording describes one stored recording file.
type Recording struct {
	ID        string     `json:"id"`
	Filename  string     `json:"filename"`
	Path      string     `json:"path"`
	URL       string     `json:"url"`
	Size      int64      `json:"size"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AlertPayload is the structure published to NATS when an alert is recorded.
type AlertPayload struct {
	WorkerID       string         `json:"worker_id"`
	Alert          Alert          `json:"alert"`
	ActivityStatus ActivityStatus `json:"activity_status"`
	Detections     []Detection    `json:"detections,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// MessagePublisher interface for publishing alerts
type MessagePublisher interface {
	Publish(subject string, data interface{}) error
}
