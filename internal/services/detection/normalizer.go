package detection

import (
	"math"
	"strings"

	"vigil-worker-go/internal/models"
)

// NormalizerConfig configures acceptance filtering for raw detector boxes.
type NormalizerConfig struct {
	// AcceptedLabels are the detector classes that pass the class filter.
	// Empty defaults to just "person".
	AcceptedLabels []string
	// SuspiciousLabels mark a detection suspicious straight from the
	// detector. They are implicitly accepted.
	SuspiciousLabels []string
	// ConfidenceThreshold is the raw-score floor in 0..1.
	ConfidenceThreshold float64
	// MinBoxSizePct discards boxes whose width or height percentage falls
	// below this floor after clamping. Filters detector noise.
	MinBoxSizePct float64
}

// Normalizer converts pixel-space detector boxes into percentage-of-frame
// detections and applies the acceptance filters. Pure and stateless.
type Normalizer struct {
	accepted        map[string]struct{}
	suspicious      map[string]struct{}
	confidenceFloor float64
	minSizePct      float64
}

// NewNormalizer creates a normalizer from config.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	accepted := make(map[string]struct{})
	for _, label := range cfg.AcceptedLabels {
		accepted[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}
	if len(accepted) == 0 {
		accepted["person"] = struct{}{}
	}

	suspicious := make(map[string]struct{})
	for _, label := range cfg.SuspiciousLabels {
		suspicious[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}

	return &Normalizer{
		accepted:        accepted,
		suspicious:      suspicious,
		confidenceFloor: cfg.ConfidenceThreshold,
		minSizePct:      cfg.MinBoxSizePct,
	}
}

// Normalize applies the filter steps in order: class, confidence floor,
// boundary clamping, degenerate-box discard, percentage conversion,
// minimum-size floor. Returns the detection and whether it was accepted.
// The caller assigns the detection ID.
func (n *Normalizer) Normalize(box models.RawBox, frameWidth, frameHeight int) (models.Detection, bool) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return models.Detection{}, false
	}

	label := strings.ToLower(strings.TrimSpace(box.Label))
	_, isAccepted := n.accepted[label]
	_, isSuspicious := n.suspicious[label]
	if !isAccepted && !isSuspicious {
		return models.Detection{}, false
	}

	if box.Confidence < n.confidenceFloor {
		return models.Detection{}, false
	}

	x1 := clamp(box.X1, 0, float64(frameWidth))
	x2 := clamp(box.X2, 0, float64(frameWidth))
	y1 := clamp(box.Y1, 0, float64(frameHeight))
	y2 := clamp(box.Y2, 0, float64(frameHeight))

	if x2 <= x1 || y2 <= y1 {
		return models.Detection{}, false
	}

	widthPct := (x2 - x1) / float64(frameWidth) * 100
	heightPct := (y2 - y1) / float64(frameHeight) * 100

	if widthPct < n.minSizePct || heightPct < n.minSizePct {
		return models.Detection{}, false
	}

	status := models.StatusNormal
	if isSuspicious {
		status = models.StatusSuspicious
	}

	x := round2(x1 / float64(frameWidth) * 100)
	y := round2(y1 / float64(frameHeight) * 100)
	width := round2(widthPct)
	height := round2(heightPct)

	// Rounding position and size independently can overshoot the far edge
	// by a hundredth; x+width and y+height must never exceed 100.
	if x+width > 100 {
		width = round2(100 - x)
	}
	if y+height > 100 {
		height = round2(100 - y)
	}

	return models.Detection{
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		Confidence: round1(box.Confidence * 100),
		Label:      box.Label,
		Status:     status,
	}, true
}

// NormalizeAll processes each box independently; all accepted boxes land in
// the same per-frame result set.
func (n *Normalizer) NormalizeAll(boxes []models.RawBox, frameWidth, frameHeight int) []models.Detection {
	detections := make([]models.Detection, 0, len(boxes))
	for _, box := range boxes {
		if det, ok := n.Normalize(box, frameWidth, frameHeight); ok {
			detections = append(detections, det)
		}
	}
	return detections
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
