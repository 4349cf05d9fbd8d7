package detection

import (
	"testing"

	"vigil-worker-go/internal/models"
)

func defaultNormalizer() *Normalizer {
	return NewNormalizer(NormalizerConfig{
		ConfidenceThreshold: 0.5,
		MinBoxSizePct:       1.0,
	})
}

func personBox(x1, y1, x2, y2, conf float64) models.RawBox {
	return models.RawBox{X1: x1, Y1: y1, X2: x2, Y2: y2, Confidence: conf, Label: "person"}
}

func TestNormalizeAccepted(t *testing.T) {
	n := defaultNormalizer()

	det, ok := n.Normalize(personBox(10, 20, 60, 100, 0.8), 200, 200)
	if !ok {
		t.Fatal("valid person box should be accepted")
	}
	if det.X != 5 || det.Y != 10 {
		t.Errorf("origin = (%v, %v), want (5, 10)", det.X, det.Y)
	}
	if det.Width != 25 || det.Height != 40 {
		t.Errorf("size = (%v, %v), want (25, 40)", det.Width, det.Height)
	}
	if det.Confidence != 80 {
		t.Errorf("confidence = %v, want 80", det.Confidence)
	}
	if det.Status != models.StatusNormal {
		t.Errorf("status = %q, want normal", det.Status)
	}
}

func TestNormalizeFilters(t *testing.T) {
	n := defaultNormalizer()

	tests := []struct {
		name string
		box  models.RawBox
	}{
		{name: "wrong class", box: models.RawBox{X1: 0, Y1: 0, X2: 50, Y2: 50, Confidence: 0.9, Label: "car"}},
		{name: "below confidence floor", box: personBox(0, 0, 50, 50, 0.3)},
		{name: "degenerate after clamping", box: personBox(-20, 10, -5, 50, 0.9)},
		{name: "zero width", box: personBox(30, 10, 30, 50, 0.9)},
		{name: "below minimum size", box: personBox(10, 10, 11, 50, 0.9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := n.Normalize(tt.box, 100, 100); ok {
				t.Errorf("box %+v should be rejected", tt.box)
			}
		})
	}
}

func TestNormalizeClamping(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{ConfidenceThreshold: 0.5})

	// Box hanging over both edges of a 100x100 frame clamps to full width
	det, ok := n.Normalize(personBox(-5, 0, 110, 100, 0.9), 100, 100)
	if !ok {
		t.Fatal("clamped box should be accepted")
	}
	if det.X != 0 {
		t.Errorf("x = %v, want 0 after clamping", det.X)
	}
	if det.Width != 100 {
		t.Errorf("width = %v, want 100 after clamping", det.Width)
	}
	if det.X+det.Width > 100 || det.Y+det.Height > 100 {
		t.Errorf("clamped box exceeds frame: x+w=%v y+h=%v", det.X+det.Width, det.Y+det.Height)
	}
}

func TestNormalizeRoundingStaysInFrame(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{ConfidenceThreshold: 0.5})

	// A sub-pixel origin rounds x up to 0.01 while the width still rounds
	// to 100; the sum must be capped back inside the frame
	det, ok := n.Normalize(personBox(0.005, 0.005, 100, 100, 0.9), 100, 100)
	if !ok {
		t.Fatal("near-full-frame box should be accepted")
	}
	if det.X != 0.01 || det.Y != 0.01 {
		t.Errorf("origin = (%v, %v), want (0.01, 0.01)", det.X, det.Y)
	}
	if det.Width != 99.99 || det.Height != 99.99 {
		t.Errorf("size = (%v, %v), want (99.99, 99.99)", det.Width, det.Height)
	}
	if det.X+det.Width > 100 || det.Y+det.Height > 100 {
		t.Errorf("rounded box exceeds frame: x+w=%v y+h=%v", det.X+det.Width, det.Y+det.Height)
	}
}

func TestNormalizeSuspiciousLabel(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{
		SuspiciousLabels:    []string{"weapon"},
		ConfidenceThreshold: 0.5,
	})

	det, ok := n.Normalize(models.RawBox{X1: 10, Y1: 10, X2: 50, Y2: 50, Confidence: 0.7, Label: "Weapon"}, 100, 100)
	if !ok {
		t.Fatal("suspicious-label box should be accepted")
	}
	if det.Status != models.StatusSuspicious {
		t.Errorf("status = %q, want suspicious", det.Status)
	}
}

func TestNormalizeAllIndependentBoxes(t *testing.T) {
	n := defaultNormalizer()

	boxes := []models.RawBox{
		personBox(0, 0, 40, 80, 0.9),
		{X1: 0, Y1: 0, X2: 40, Y2: 80, Confidence: 0.9, Label: "dog"}, // filtered
		personBox(50, 10, 90, 90, 0.6),
		personBox(0, 0, 10, 10, 0.2), // below confidence floor
	}

	detections := n.NormalizeAll(boxes, 100, 100)
	if len(detections) != 2 {
		t.Fatalf("accepted = %d, want 2 (multiple people per frame all pass)", len(detections))
	}
}
