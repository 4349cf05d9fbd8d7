package alerting

import (
	"time"

	"vigil-worker-go/internal/models"
)

// Message is the fixed human-readable alert template.
const Message = "⚠️ Suspicious Activity Detected!"

// DefaultMinDisplayConfidence floors the confidence shown to consumers so a
// low-confidence-but-positive judgment still reads as actionable.
const DefaultMinDisplayConfidence = 70.0

// Policy decides whether the fused activity judgment warrants an alert.
//
// Two signals feed it: the clip classifier's prediction and the per-detection
// heuristic (a detection flagged suspicious by its label). Which one wins
// when both are present is configurable; the original system never pinned
// this down, so it stays a policy knob rather than a hard-coded rule.
type Policy struct {
	minDisplayConfidence float64
	classifierPrecedence bool

	nowFn func() time.Time
}

// NewPolicy creates an alert policy. minDisplayConfidence <= 0 selects the
// default floor of 70.
func NewPolicy(minDisplayConfidence float64, classifierPrecedence bool) *Policy {
	if minDisplayConfidence <= 0 {
		minDisplayConfidence = DefaultMinDisplayConfidence
	}
	return &Policy{
		minDisplayConfidence: minDisplayConfidence,
		classifierPrecedence: classifierPrecedence,
		nowFn:                time.Now,
	}
}

// Evaluate fuses the latest classification (may be nil) with the latest
// accepted detection set and returns an alert exactly when the fused judgment
// is suspicious.
func (p *Policy) Evaluate(result *models.ClassificationResult, detections []models.Detection) (models.Alert, bool) {
	classifierSuspicious := result != nil && result.Prediction == models.StatusSuspicious

	detectorSuspicious := false
	detectorConfidence := 0.0
	for _, det := range detections {
		if det.Status == models.StatusSuspicious {
			detectorSuspicious = true
			if det.Confidence > detectorConfidence {
				detectorConfidence = det.Confidence
			}
		}
	}

	var suspicious bool
	var rawConfidence float64

	if p.classifierPrecedence && result != nil {
		// The classifier alone decides when present
		suspicious = classifierSuspicious
		rawConfidence = result.Confidence
	} else {
		suspicious = classifierSuspicious || detectorSuspicious
		if classifierSuspicious {
			rawConfidence = result.Confidence
		}
		if detectorSuspicious && detectorConfidence > rawConfidence {
			rawConfidence = detectorConfidence
		}
	}

	if !suspicious {
		return models.Alert{}, false
	}

	return p.build(rawConfidence), true
}

func (p *Policy) build(rawConfidence float64) models.Alert {
	now := p.nowFn()

	confidence := rawConfidence
	if confidence < p.minDisplayConfidence {
		confidence = p.minDisplayConfidence
	}
	if confidence > 100 {
		confidence = 100
	}

	return models.Alert{
		ID:            now.UnixMilli(),
		Message:       Message,
		Time:          now.Format("15:04:05"),
		Timestamp:     now,
		Confidence:    confidence,
		RawConfidence: rawConfidence,
	}
}
